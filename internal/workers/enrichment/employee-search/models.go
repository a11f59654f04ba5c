package employeesearch

import (
	"context"

	"quickenrich-workers/internal/common/logger"
	"quickenrich-workers/internal/common/quickenrich"
)

type SearchMethod string

const (
	SearchMethodLinkedIn SearchMethod = "linkedin"
	SearchMethodCompany  SearchMethod = "company"
)

const (
	ResourceEmployee = "employee"
	OperationSearch  = "search"
)

// SearchParams is one input item as entered on the service task.
type SearchParams struct {
	Resource     string       `json:"resource,omitempty"`
	Operation    string       `json:"operation,omitempty"`
	SearchMethod SearchMethod `json:"searchMethod,omitempty"`
	LinkedInURL  string       `json:"linkedinUrl,omitempty"`
	CompanyURL   string       `json:"companyUrl,omitempty"`
	FirstName    string       `json:"firstName,omitempty"`
	LastName     string       `json:"lastName,omitempty"`
}

type Input struct {
	Items          []SearchParams `json:"items"`
	ContinueOnFail bool           `json:"continueOnFail"`
	Credential     string         `json:"credential,omitempty"`
}

// OutputItem is one emitted record. PairedItem is the index of the input item that produced it.
type OutputItem struct {
	JSON       interface{} `json:"json"`
	PairedItem int         `json:"pairedItem"`
}

type Output struct {
	Results []OutputItem `json:"results"`
	Count   int          `json:"count"`
}

// jobVariables accepts either a batch under "items" or a single item at the top level.
type jobVariables struct {
	SearchParams
	Items          []SearchParams `json:"items"`
	ContinueOnFail *bool          `json:"continueOnFail"`
	Credential     string         `json:"credential"`
}

// Searcher performs one employee lookup.
type Searcher interface {
	SearchEmployee(ctx context.Context, query map[string]string) (quickenrich.Result, error)
}

// SearcherFactory returns a Searcher authenticated with the named credential.
type SearcherFactory func(credential string) Searcher

type ServiceDependencies struct {
	Logger    logger.Logger
	Searchers SearcherFactory
	// CredentialTester backs HealthCheck; nil skips the API probe.
	CredentialTester func(ctx context.Context) error
}
