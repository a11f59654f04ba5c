package employeesearch

import (
	"quickenrich-workers/internal/common/credentials"
	apperrors "quickenrich-workers/internal/common/errors"
	"quickenrich-workers/pkg/registry"
)

// Descriptor is the registry entry the modeler uses to render the service task.
func Descriptor() registry.Activity {
	search := func(method SearchMethod) map[string][]string {
		return map[string][]string{
			"resource":     {ResourceEmployee},
			"operation":    {OperationSearch},
			"searchMethod": {string(method)},
		}
	}
	linkedinOnly := search(SearchMethodLinkedIn)
	companyOnly := search(SearchMethodCompany)

	return registry.Activity{
		ID:                   TaskType,
		DisplayName:          "QuickEnrich",
		Description:          "Search employee data using QuickEnrich API",
		Category:             "enrichment",
		Version:              "1.0.0",
		TaskType:             TaskType,
		ImplementationStatus: "completed",
		Credentials:          []registry.CredentialRef{{Name: credentials.CredentialType, Required: true}},
		Properties: []registry.Property{
			{
				Name:        "resource",
				DisplayName: "Resource",
				Type:        "options",
				Default:     ResourceEmployee,
				Options:     []registry.Option{{Name: "Employee", Value: ResourceEmployee}},
			},
			{
				Name:        "operation",
				DisplayName: "Operation",
				Type:        "options",
				Default:     OperationSearch,
				Options: []registry.Option{{
					Name:        "Search",
					Value:       OperationSearch,
					Description: "Search for employee information",
				}},
				ShowWhen: map[string][]string{"resource": {ResourceEmployee}},
			},
			{
				Name:        "searchMethod",
				DisplayName: "Search Method",
				Type:        "options",
				Default:     string(SearchMethodLinkedIn),
				Options: []registry.Option{
					{Name: "LinkedIn URL", Value: string(SearchMethodLinkedIn), Description: "Search by LinkedIn profile URL"},
					{Name: "Company + Name", Value: string(SearchMethodCompany), Description: "Search by company URL and employee name"},
				},
				ShowWhen: map[string][]string{"resource": {ResourceEmployee}, "operation": {OperationSearch}},
			},
			{
				Name:        "linkedinUrl",
				DisplayName: "LinkedIn URL",
				Type:        "string",
				Required:    true,
				Placeholder: "https://www.linkedin.com/in/johndoe",
				Description: "LinkedIn profile URL of the employee",
				ShowWhen:    linkedinOnly,
			},
			{
				Name:        "companyUrl",
				DisplayName: "Company URL",
				Type:        "string",
				Required:    true,
				Placeholder: "https://example.com",
				Description: "Company website URL",
				ShowWhen:    companyOnly,
			},
			{
				Name:        "firstName",
				DisplayName: "First Name",
				Type:        "string",
				Required:    true,
				Placeholder: "John",
				ShowWhen:    companyOnly,
			},
			{
				Name:        "lastName",
				DisplayName: "Last Name",
				Type:        "string",
				Required:    true,
				Placeholder: "Doe",
				ShowWhen:    companyOnly,
			},
		},
		InputSchema:  GetInputSchema().ToMap(),
		OutputSchema: GetOutputSchema().ToMap(),
		ErrorCodes: []string{
			string(apperrors.ErrCodeInputParsingFailed),
			string(apperrors.ErrCodeValidationFailed),
			string(apperrors.ErrCodeCredentialsNotFound),
			string(apperrors.ErrCodeCredentialStoreError),
			string(apperrors.ErrCodeInvalidAPIKey),
			string(apperrors.ErrCodeRateLimitExceeded),
			string(apperrors.ErrCodeBadRequest),
			string(apperrors.ErrCodeQuickEnrichAPIError),
			string(apperrors.ErrCodeTransportError),
			string(apperrors.ErrCodeInternal),
		},
		Timeout: "30s",
		Retries: 3,
		Tags:    []string{"quickenrich", "enrichment", "employee"},
	}
}
