// Package quickenrich is the HTTP adapter for the QuickEnrich REST API.
package quickenrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quickenrich-workers/internal/common/credentials"
	commonhttp "quickenrich-workers/internal/common/http"
	"quickenrich-workers/internal/common/logger"
	"quickenrich-workers/internal/common/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://app.quickenrich.io"
	SearchEndpoint = "/api/employees/search"

	// TestLinkedInURL is the probe profile used to verify a credential.
	TestLinkedInURL = "https://www.linkedin.com/in/test"

	tracerName = "quickenrich-workers/quickenrich"
)

// Result is a decoded JSON response: a map, a slice, a scalar, or the raw body
// string when the API answered 2xx with something that is not JSON.
type Result = interface{}

// NotFound builds the sentinel returned for "employee not found" answers.
func NotFound(message string) map[string]interface{} {
	if message == "" {
		message = messageNotFound
	}
	return map[string]interface{}{
		"success": false,
		"message": message,
		"data":    nil,
	}
}

// IsNotFound reports whether r is the not-found sentinel.
func IsNotFound(r Result) bool {
	m, ok := r.(map[string]interface{})
	if !ok {
		return false
	}
	success, ok := m["success"].(bool)
	data, hasData := m["data"]
	return ok && !success && hasData && data == nil
}

type Options struct {
	BaseURL        string
	Timeout        time.Duration
	HTTPClient     commonhttp.Doer
	Credentials    credentials.Store
	CredentialName string
	Logger         logger.Logger
}

type Client struct {
	baseURL        string
	http           commonhttp.Doer
	creds          credentials.Store
	credentialName string
	logger         logger.Logger
	tracer         trace.Tracer
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = commonhttp.NewClient(timeout)
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	name := opts.CredentialName
	if name == "" {
		name = credentials.CredentialType
	}

	return &Client{
		baseURL:        baseURL,
		http:           httpClient,
		creds:          opts.Credentials,
		credentialName: name,
		logger:         log,
		tracer:         otel.Tracer(tracerName),
	}
}

// WithCredential returns a copy of the client that authenticates with the named credential.
func (c *Client) WithCredential(name string) *Client {
	if name == "" || name == c.credentialName {
		return c
	}
	cp := *c
	cp.credentialName = name
	return &cp
}

func (c *Client) CredentialName() string {
	return c.credentialName
}

// SearchEmployee looks up one employee by the resolved query parameters.
func (c *Client) SearchEmployee(ctx context.Context, query map[string]string) (Result, error) {
	return c.Request(ctx, http.MethodGet, SearchEndpoint, query, nil)
}

// TestCredentials probes the search endpoint. Only an authentication failure means the
// key is unusable; a not-found or any other API answer proves the key was accepted.
func (c *Client) TestCredentials(ctx context.Context) error {
	_, err := c.SearchEmployee(ctx, map[string]string{"linkedin_url": TestLinkedInURL})
	if err == nil {
		return nil
	}
	if _, ok := err.(*APIError); ok && !IsKind(err, KindAuth) {
		return nil
	}
	return err
}

// Request issues one authenticated call and interprets the response envelope.
// Transport failures are returned as the *url.Error produced by net/http.
func (c *Client) Request(ctx context.Context, method, endpoint string, query map[string]string, body map[string]interface{}) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "quickenrich "+method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("quickenrich.endpoint", endpoint),
		),
	)
	defer span.End()

	log := logger.WithTrace(ctx, c.logger).With(map[string]interface{}{
		"endpoint": endpoint,
		"method":   method,
	})

	req, err := c.newRequest(ctx, method, endpoint, query, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.QuickEnrichRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.record(span, endpoint, "transport", err)
		log.Warn("QuickEnrich request failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(span, endpoint, "transport", err)
		return nil, &url.Error{Op: method, URL: req.URL.String(), Err: err}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	result, err := interpret(resp.StatusCode, payload)
	outcome := outcomeOf(result, err)
	c.record(span, endpoint, outcome, err)

	fields := map[string]interface{}{"statusCode": resp.StatusCode, "outcome": outcome}
	if err != nil {
		log.Warn("QuickEnrich request rejected", mergeFields(fields, map[string]interface{}{"error": err.Error()}))
		return nil, err
	}
	log.Debug("QuickEnrich request completed", fields)
	return result, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query map[string]string, body map[string]interface{}) (*http.Request, error) {
	if c.creds == nil {
		return nil, &credentials.NotFoundError{Name: c.credentialName}
	}
	apiKey, err := c.creds.APIKey(ctx, c.credentialName)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid QuickEnrich URL: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) record(span trace.Span, endpoint, outcome string, err error) {
	metrics.QuickEnrichRequests.WithLabelValues(endpoint, outcome).Inc()
	span.SetAttributes(attribute.String("quickenrich.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// interpret applies the status mapping and then the in-band envelope rules.
func interpret(status int, payload []byte) (Result, error) {
	decoded, isJSON := decode(payload)

	if status < 200 || status > 299 {
		message := messageField(decoded)
		switch status {
		case http.StatusUnauthorized:
			return nil, &APIError{Kind: KindAuth, StatusCode: status, Message: messageInvalidAPIKey, Description: descriptionInvalidAPIKey}
		case http.StatusTooManyRequests:
			return nil, &APIError{Kind: KindRateLimit, StatusCode: status, Message: messageRateLimit, Description: descriptionRateLimit}
		case http.StatusNotFound:
			return NotFound(message), nil
		case http.StatusBadRequest:
			if message == "" {
				message = messageInvalidRequest
			}
			return nil, &APIError{Kind: KindBadRequest, StatusCode: status, Message: message, Description: descriptionInvalidParams}
		default:
			if message == "" {
				message = http.StatusText(status)
			}
			if message == "" {
				message = messageUnknown
			}
			return nil, &APIError{
				Kind:       KindUnknown,
				StatusCode: status,
				Message:    fmt.Sprintf("QuickEnrich API error [%d]: %s", status, message),
			}
		}
	}

	if !isJSON {
		return string(payload), nil
	}

	envelope, ok := decoded.(map[string]interface{})
	if !ok {
		return decoded, nil
	}

	if success, ok := envelope["success"].(bool); ok && !success {
		code, hasCode := intField(envelope, "code")
		message := messageField(envelope)
		if hasCode && code == http.StatusNotFound {
			return NotFound(message), nil
		}
		if !hasCode || code == 0 {
			code = http.StatusInternalServerError
		}
		if message == "" {
			message = messageUnknown
		}
		return nil, &APIError{
			Kind:        KindBadRequest,
			Code:        code,
			Message:     message,
			Description: fmt.Sprintf("QuickEnrich API error (%d)", code),
		}
	}

	if data, ok := envelope["data"]; ok && data != nil {
		return data, nil
	}
	return envelope, nil
}

func decode(payload []byte) (interface{}, bool) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

func messageField(v interface{}) string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := m["message"].(string)
	return s
}

// intField reads a whole-number field; fractional values do not count as codes.
func intField(m map[string]interface{}, key string) (int, bool) {
	var f float64
	switch v := m[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = v
	case int:
		return v, true
	default:
		return 0, false
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func outcomeOf(result Result, err error) string {
	if err != nil {
		if apiErr, ok := err.(*APIError); ok {
			return string(apiErr.Kind)
		}
		return "transport"
	}
	if IsNotFound(result) {
		return "not_found"
	}
	return "success"
}

func mergeFields(a, b map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
