package employeesearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"quickenrich-workers/internal/common/camunda/camundatest"
	"quickenrich-workers/internal/common/config"
	"quickenrich-workers/internal/common/credentials"
	"quickenrich-workers/internal/common/logger"
	"quickenrich-workers/internal/common/quickenrich"
	"quickenrich-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service Implementation
// ==========================

type MockService struct {
	mock.Mock
}

func (m *MockService) Execute(ctx context.Context, input *Input) (*Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Output), args.Error(1)
}

func (m *MockService) TestCredentials(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ==========================
// Test Helpers
// ==========================

func createValidConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxJobsActive:  5,
		Timeout:        5 * time.Second,
		MaxRetries:     3,
		CredentialName: credentials.CredentialType,
	}
}

func newMockHandler(t *testing.T, svc *MockService) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: createValidConfig(),
		Logger:       logger.NewTestLogger(t),
		Service:      svc,
	})
	require.NoError(t, err)
	return h
}

// newAPIHandler wires the real service and client against a stub QuickEnrich API.
func newAPIHandler(t *testing.T, api http.HandlerFunc) *Handler {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client := quickenrich.NewClient(quickenrich.Options{
		BaseURL:     server.URL,
		Credentials: credentials.NewStaticStore("test-key"),
		Logger:      logger.NewTestLogger(t),
	})

	h, err := NewHandler(HandlerOptions{
		CustomConfig: createValidConfig(),
		Client:       client,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Handler Creation Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr string
	}{
		{
			name: "valid configuration",
			opts: HandlerOptions{CustomConfig: createValidConfig(), Service: new(MockService)},
		},
		{
			name:    "invalid timeout",
			opts:    HandlerOptions{CustomConfig: &Config{MaxJobsActive: 1, CredentialName: "x"}, Service: new(MockService)},
			wantErr: "timeout must be positive",
		},
		{
			name:    "missing client",
			opts:    HandlerOptions{CustomConfig: createValidConfig()},
			wantErr: "quickenrich client is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = logger.NewNoOpLogger()
			h, err := NewHandler(tt.opts)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TaskType, h.GetTaskType())
			assert.True(t, h.IsEnabled())
		})
	}
}

func TestHandler_ConfigFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		QuickEnrich: config.QuickEnrichConfig{CredentialName: "tenant", ContinueOnFail: true},
		Workers: map[string]config.WorkerConfig{
			WorkerName: {Enabled: true, MaxJobsActive: 9, Timeout: 1500},
		},
	}

	h, err := NewHandler(HandlerOptions{AppConfig: appCfg, Service: new(MockService), Logger: logger.NewNoOpLogger()})
	require.NoError(t, err)

	cfg := h.GetConfig()
	assert.Equal(t, 9, cfg.MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "tenant", cfg.CredentialName)
	assert.True(t, cfg.ContinueOnFail)

	opts := h.WorkerOptions()
	assert.Equal(t, TaskType, opts.TaskType)
	assert.Equal(t, 9, opts.MaxJobsActive)
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := newMockHandler(t, new(MockService))

	t.Run("single item at top level", func(t *testing.T) {
		job := camundatest.NewJob(1, TaskType, 3, map[string]interface{}{
			"searchMethod": "linkedin",
			"linkedinUrl":  "https://linkedin.com/in/jane",
			"orderId":      42,
		})
		input, err := h.parseInput(job)
		require.NoError(t, err)
		require.Len(t, input.Items, 1)
		assert.Equal(t, "https://linkedin.com/in/jane", input.Items[0].LinkedInURL)
		assert.False(t, input.ContinueOnFail)
		assert.Empty(t, input.Credential)
	})

	t.Run("batch", func(t *testing.T) {
		job := camundatest.NewJob(2, TaskType, 3, map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"linkedinUrl": "a"},
				map[string]interface{}{"searchMethod": "company", "companyUrl": "acme.com", "firstName": "J", "lastName": "D"},
			},
			"continueOnFail": true,
			"credential":     "tenant-a",
		})
		input, err := h.parseInput(job)
		require.NoError(t, err)
		require.Len(t, input.Items, 2)
		assert.Equal(t, SearchMethodCompany, input.Items[1].SearchMethod)
		assert.True(t, input.ContinueOnFail)
		assert.Equal(t, "tenant-a", input.Credential)
	})

	t.Run("wrong types", func(t *testing.T) {
		job := camundatest.NewJob(3, TaskType, 3, map[string]interface{}{
			"items":          []interface{}{map[string]interface{}{"linkedinUrl": 5}},
			"continueOnFail": "yes",
		})
		_, err := h.parseInput(job)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "VALIDATION_FAILED")
	})
}

// ==========================
// Job Handling Tests
// ==========================

func TestHandler_Handle_Completes(t *testing.T) {
	var gotQuery, gotAuth string
	h := newAPIHandler(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("linkedin_url")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"data":{"name":"Jane","title":"CTO"}}`))
	})

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(10, TaskType, 3, map[string]interface{}{
		"linkedinUrl": "https://linkedin.com/in/jane",
	}))

	assert.Equal(t, "https://linkedin.com/in/jane", gotQuery)
	assert.Equal(t, "Bearer test-key", gotAuth)

	require.Len(t, client.Completed(), 1)
	assert.Empty(t, client.Failed())
	assert.Empty(t, client.Thrown())

	vars := camundatest.Variables(client.Completed()[0].Variables)
	search := vars["employeeSearch"].(map[string]interface{})
	assert.Equal(t, float64(1), search["count"])
	results := search["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, float64(0), first["pairedItem"])
	assert.Equal(t, "Jane", first["json"].(map[string]interface{})["name"])
}

func TestHandler_Handle_NotFoundCompletes(t *testing.T) {
	h := newAPIHandler(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"code":404,"message":"Not found"}`))
	})

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(11, TaskType, 3, map[string]interface{}{"linkedinUrl": "x"}))

	require.Len(t, client.Completed(), 1)
	vars := camundatest.Variables(client.Completed()[0].Variables)
	first := vars["employeeSearch"].(map[string]interface{})["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"success": false, "message": "Not found", "data": nil}, first["json"])
}

func TestHandler_Handle_NonRetryableThrowsBPMNError(t *testing.T) {
	h := newAPIHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(12, TaskType, 3, map[string]interface{}{"linkedinUrl": "x"}))

	assert.Empty(t, client.Completed())
	assert.Empty(t, client.Failed())
	require.Len(t, client.Thrown(), 1)

	thrown := client.Thrown()[0]
	assert.Equal(t, int64(12), thrown.JobKey)
	assert.Equal(t, "INVALID_API_KEY", thrown.ErrorCode)
	assert.Equal(t, "Invalid API key", thrown.ErrorMessage)

	vars := camundatest.Variables(thrown.Variables)
	assert.Equal(t, float64(401), vars["statusCode"])
	assert.Equal(t, float64(0), vars["itemIndex"])
	assert.Equal(t, false, vars["retryable"])
}

func TestHandler_Handle_RetryableFailsJob(t *testing.T) {
	h := newAPIHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(13, TaskType, 2, map[string]interface{}{"linkedinUrl": "x"}))

	assert.Empty(t, client.Thrown())
	require.Len(t, client.Failed(), 1)

	failed := client.Failed()[0]
	assert.Equal(t, int32(1), failed.Retries)
	assert.Equal(t, "[RATE_LIMIT_EXCEEDED] Rate limit exceeded", failed.ErrorMessage)
}

func TestHandler_Handle_LastRetryThrows(t *testing.T) {
	h := newAPIHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(14, TaskType, 1, map[string]interface{}{"linkedinUrl": "x"}))

	assert.Empty(t, client.Failed())
	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "QUICKENRICH_API_ERROR", client.Thrown()[0].ErrorCode)
}

func TestHandler_Handle_ContinueOnFail(t *testing.T) {
	var calls atomic.Int32
	h := newAPIHandler(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	})

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(15, TaskType, 3, map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"searchMethod": "company"},
			map[string]interface{}{"linkedinUrl": "b"},
		},
		"continueOnFail": true,
	}))

	assert.Equal(t, int32(1), calls.Load())
	require.Len(t, client.Completed(), 1)

	search := camundatest.Variables(client.Completed()[0].Variables)["employeeSearch"].(map[string]interface{})
	results := search["results"].([]interface{})
	require.Len(t, results, 2)
	assert.Equal(t,
		map[string]interface{}{"error": "Company URL is required for company search method"},
		results[0].(map[string]interface{})["json"])
}

func TestHandler_Handle_InvalidInputThrows(t *testing.T) {
	svc := new(MockService)
	h := newMockHandler(t, svc)

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(16, TaskType, 3, map[string]interface{}{"linkedinUrl": true}))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "VALIDATION_FAILED", client.Thrown()[0].ErrorCode)
	svc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestHandler_Handle_UnclassifiedErrorIsInternal(t *testing.T) {
	svc := new(MockService)
	svc.On("Execute", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	h := newMockHandler(t, svc)

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(17, TaskType, 3, map[string]interface{}{"linkedinUrl": "x"}))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "INTERNAL_ERROR", client.Thrown()[0].ErrorCode)
	svc.AssertExpectations(t)
}

// ==========================
// Health Check Tests
// ==========================

func TestHandler_HealthCheck(t *testing.T) {
	svc := new(MockService)
	svc.On("TestCredentials", mock.Anything).Return(nil).Once()
	svc.On("TestCredentials", mock.Anything).Return(&quickenrich.APIError{Kind: quickenrich.KindAuth, Message: "Invalid API key"}).Once()
	h := newMockHandler(t, svc)

	assert.NoError(t, h.HealthCheck(context.Background()))
	assert.ErrorContains(t, h.HealthCheck(context.Background()), "Invalid API key")
	svc.AssertExpectations(t)
}

func TestHandler_HealthCheck_AgainstAPI(t *testing.T) {
	h := newAPIHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, quickenrich.TestLinkedInURL, r.URL.Query().Get("linkedin_url"))
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, h.HealthCheck(context.Background()))
}

func TestDescriptor(t *testing.T) {
	d := Descriptor()
	assert.Equal(t, TaskType, d.TaskType)
	assert.Contains(t, d.ErrorCodes, "RATE_LIMIT_EXCEEDED")
	assert.Equal(t, "object", d.InputSchema["type"])

	showWhen := map[string]map[string][]string{}
	for _, p := range d.Properties {
		showWhen[p.Name] = p.ShowWhen
	}
	assert.Equal(t, map[string][]string{
		"resource":  {ResourceEmployee},
		"operation": {OperationSearch},
	}, showWhen["searchMethod"])
	assert.Equal(t, map[string][]string{
		"resource":     {ResourceEmployee},
		"operation":    {OperationSearch},
		"searchMethod": {"linkedin"},
	}, showWhen["linkedinUrl"])
	assert.Equal(t, []string{"company"}, showWhen["companyUrl"]["searchMethod"])
	assert.Equal(t, []string{ResourceEmployee}, showWhen["lastName"]["resource"])

	reg := &registry.ActivityRegistry{Activities: []registry.Activity{d}}
	assert.NoError(t, reg.Validate())
}
