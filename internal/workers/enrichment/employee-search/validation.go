package employeesearch

import "quickenrich-workers/internal/common/validation"

func itemProperties() map[string]validation.Property {
	return map[string]validation.Property{
		"resource": {
			Type:        "string",
			Description: "Resource to operate on",
			Default:     ResourceEmployee,
		},
		"operation": {
			Type:        "string",
			Description: "Operation to perform",
			Default:     OperationSearch,
		},
		"searchMethod": {
			Type:        "string",
			Description: "How to identify the employee: linkedin or company",
			Default:     string(SearchMethodLinkedIn),
		},
		"linkedinUrl": {
			Type:        "string",
			Description: "LinkedIn profile URL of the employee",
		},
		"companyUrl": {
			Type:        "string",
			Description: "Company website URL",
		},
		"firstName": {
			Type:        "string",
			Description: "Employee first name",
		},
		"lastName": {
			Type:        "string",
			Description: "Employee last name",
		},
	}
}

// GetInputSchema checks types only. Missing or unknown values are reported per item by
// ResolveQuery so that continueOnFail can keep the rest of the batch going.
func GetInputSchema() validation.JSONSchema {
	props := itemProperties()
	props["items"] = validation.Property{
		Type:        "array",
		Description: "Batch of search items; when absent the job variables are a single item",
		Items: &validation.Property{
			Type:       "object",
			Properties: itemProperties(),
		},
	}
	props["continueOnFail"] = validation.Property{
		Type:        "boolean",
		Description: "Emit an error record for a failed item instead of failing the job",
	}
	props["credential"] = validation.Property{
		Type:        "string",
		Description: "Name of the quickEnrichApi credential to authenticate with",
		MinLength:   validation.Int(1),
	}

	return validation.JSONSchema{
		Type:       "object",
		Properties: props,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"employeeSearch": {
				Type:     "object",
				Required: []string{"results", "count"},
				Properties: map[string]validation.Property{
					"results": {
						Type:        "array",
						Description: "One record per item; array results expand into several records",
						Items: &validation.Property{
							Type:     "object",
							Required: []string{"json", "pairedItem"},
							Properties: map[string]validation.Property{
								"json":       {Description: "Employee data, not-found record or {error}"},
								"pairedItem": {Type: "integer", Description: "Index of the input item"},
							},
						},
					},
					"count": {Type: "integer"},
				},
			},
		},
	}
}
