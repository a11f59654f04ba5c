package employeesearch

import (
	"context"
	"fmt"

	apperrors "quickenrich-workers/internal/common/errors"
	"quickenrich-workers/internal/common/logger"
	"quickenrich-workers/internal/common/metrics"
	"quickenrich-workers/internal/common/quickenrich"
)

// ItemError ties a failure to the input item that raised it.
type ItemError struct {
	ItemIndex int
	Err       error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.ItemIndex, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

func (e *ItemError) StandardError() *apperrors.StandardError {
	stdErr := apperrors.Normalize(e.Err)
	if stdErr.Metadata == nil {
		stdErr.Metadata = map[string]interface{}{}
	}
	stdErr.Metadata["itemIndex"] = e.ItemIndex
	return stdErr
}

type Service struct {
	config    *Config
	logger    logger.Logger
	searchers SearcherFactory
	tester    func(ctx context.Context) error
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		logger:    deps.Logger,
		searchers: deps.Searchers,
		tester:    deps.CredentialTester,
	}
}

// Execute runs one search per item, strictly in input order. With ContinueOnFail a
// failed item becomes an {"error": message} record and the batch goes on; otherwise
// the first failure aborts the batch.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	credential := input.Credential
	if credential == "" {
		credential = s.config.CredentialName
	}
	searcher := s.searchers(credential)

	out := &Output{Results: make([]OutputItem, 0, len(input.Items))}

	for i, item := range input.Items {
		result, err := s.searchItem(ctx, searcher, i, item)
		if err != nil {
			metrics.WorkerItemsProcessed.WithLabelValues(TaskType, "error").Inc()
			if !input.ContinueOnFail {
				return nil, &ItemError{ItemIndex: i, Err: err}
			}
			s.logger.Warn("Item failed, continuing", map[string]interface{}{
				"itemIndex": i,
				"error":     err.Error(),
			})
			out.Results = append(out.Results, OutputItem{
				JSON:       map[string]interface{}{"error": err.Error()},
				PairedItem: i,
			})
			continue
		}

		outcome := "success"
		if quickenrich.IsNotFound(result) {
			outcome = "not_found"
		}
		metrics.WorkerItemsProcessed.WithLabelValues(TaskType, outcome).Inc()

		out.Results = append(out.Results, expand(result, i)...)
	}

	out.Count = len(out.Results)
	return out, nil
}

func (s *Service) searchItem(ctx context.Context, searcher Searcher, index int, item SearchParams) (quickenrich.Result, error) {
	query, err := ResolveQuery(index, item)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"itemIndex": index}
	if company, ok := query["company_url"]; ok {
		fields["searchMethod"] = string(SearchMethodCompany)
		fields["companyDomain"] = quickenrich.NormalizeURL(company)
	} else {
		fields["searchMethod"] = string(SearchMethodLinkedIn)
	}
	s.logger.Debug("Searching employee", fields)

	return searcher.SearchEmployee(ctx, query)
}

// TestCredentials verifies the configured credential against the API.
func (s *Service) TestCredentials(ctx context.Context) error {
	if s.tester == nil {
		return nil
	}
	return s.tester(ctx)
}

// expand emits one record per element for a non-empty array result and a single
// record otherwise. Every record is paired with the item that produced it.
func expand(result quickenrich.Result, index int) []OutputItem {
	if arr, ok := result.([]interface{}); ok && len(arr) > 0 {
		items := make([]OutputItem, len(arr))
		for j, el := range arr {
			items[j] = OutputItem{JSON: el, PairedItem: index}
		}
		return items
	}
	return []OutputItem{{JSON: result, PairedItem: index}}
}
