package employeesearch

import (
	"fmt"
	"strings"

	apperrors "quickenrich-workers/internal/common/errors"
)

// ValidationError is a missing or invalid parameter on one input item.
type ValidationError struct {
	ItemIndex int
	Field     string
	Message   string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) StandardError() *apperrors.StandardError {
	return apperrors.NewValidationError(e.Message, e.ItemIndex, e.Field)
}

// ResolveQuery turns one item into the query parameters of the search endpoint.
// Values are trimmed; company fields are checked in a fixed order and the first
// missing one is reported.
func ResolveQuery(itemIndex int, params SearchParams) (map[string]string, error) {
	if params.Resource != "" && params.Resource != ResourceEmployee {
		return nil, &ValidationError{
			ItemIndex: itemIndex,
			Field:     "resource",
			Message:   fmt.Sprintf("The resource %q is not known", params.Resource),
		}
	}
	if params.Operation != "" && params.Operation != OperationSearch {
		return nil, &ValidationError{
			ItemIndex: itemIndex,
			Field:     "operation",
			Message:   fmt.Sprintf("The operation %q is not supported for resource %q", params.Operation, ResourceEmployee),
		}
	}

	method := params.SearchMethod
	if method == "" {
		method = SearchMethodLinkedIn
	}

	switch method {
	case SearchMethodLinkedIn:
		linkedinURL := strings.TrimSpace(params.LinkedInURL)
		if linkedinURL == "" {
			return nil, &ValidationError{
				ItemIndex: itemIndex,
				Field:     "linkedinUrl",
				Message:   "LinkedIn URL is required for LinkedIn search method",
			}
		}
		return map[string]string{"linkedin_url": linkedinURL}, nil

	case SearchMethodCompany:
		fields := []struct {
			name, param, label, value string
		}{
			{"companyUrl", "company_url", "Company URL", params.CompanyURL},
			{"firstName", "first_name", "First Name", params.FirstName},
			{"lastName", "last_name", "Last Name", params.LastName},
		}

		query := make(map[string]string, len(fields))
		for _, f := range fields {
			v := strings.TrimSpace(f.value)
			if v == "" {
				return nil, &ValidationError{
					ItemIndex: itemIndex,
					Field:     f.name,
					Message:   f.label + " is required for company search method",
				}
			}
			query[f.param] = v
		}
		return query, nil

	default:
		return nil, &ValidationError{
			ItemIndex: itemIndex,
			Field:     "searchMethod",
			Message:   fmt.Sprintf("Unknown search method %q", method),
		}
	}
}
