// Package push forwards single FHIR resources to a remote FHIR server.
package push

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ehr/fhir-api/internal/platform/fhir"
	"github.com/ehr/fhir-api/internal/store"
)

// ValidationError reports a resource rejected before any request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid FHIR resource: %s", e.Message)
}

// GatewayError reports a failed exchange with the remote server. StatusCode is
// zero when no response was received.
type GatewayError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("POST %s: %v", e.Endpoint, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("POST %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	case e.Body != "":
		return fmt.Sprintf("POST %s: status %d: %s", e.Endpoint, e.StatusCode, truncate(e.Body, maxErrorBody))
	}
	return fmt.Sprintf("POST %s: status %d", e.Endpoint, e.StatusCode)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

const maxErrorBody = 512

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// HTTPDoer is the subset of *http.Client used by the gateway.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Gateway struct {
	baseURL string
	client  HTTPDoer
	logger  zerolog.Logger
}

type Option func(*Gateway)

func WithHTTPClient(c HTTPDoer) Option {
	return func(g *Gateway) {
		g.client = c
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = l
	}
}

// NewGateway creates a gateway for the FHIR server at baseURL. The default
// client is http.DefaultClient, so no timeout is applied beyond the request
// context.
func NewGateway(baseURL string, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Endpoint returns the URL a resource is pushed to: {base}/{resourceType},
// with /{id} appended when the resource has an id.
func (g *Gateway) Endpoint(resource store.Record) (string, error) {
	rt, present := resource["resourceType"]
	if !present {
		return "", &ValidationError{Field: "resourceType", Message: "missing resourceType"}
	}
	resourceType, ok := rt.(string)
	if !ok || strings.TrimSpace(resourceType) == "" {
		return "", &ValidationError{Field: "resourceType", Message: "resourceType must be a non-empty string"}
	}

	id, err := resourceID(resource)
	if err != nil {
		return "", err
	}

	endpoint := g.baseURL + "/" + url.PathEscape(resourceType)
	if id != "" {
		endpoint += "/" + url.PathEscape(id)
	}
	return endpoint, nil
}

func resourceIDOrEmpty(resource store.Record) string {
	id, _ := resourceID(resource)
	return id
}

// resourceID renders the resource id as a path segment. Numeric ids are
// formatted without exponent or trailing zeros.
func resourceID(resource store.Record) (string, error) {
	switch v := resource["id"].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int, int32, int64, uint, uint32, uint64, json.Number:
		return fmt.Sprint(v), nil
	}
	return "", &ValidationError{Field: "id", Message: "id must be a string or a number"}
}

// Push sends resource to the remote server in a single POST and returns the
// decoded response body. It never retries.
func (g *Gateway) Push(ctx context.Context, resource store.Record) (map[string]any, error) {
	endpoint, err := g.Endpoint(resource)
	if err != nil {
		g.logger.Error().Err(err).Msg("rejected FHIR resource")
		return nil, err
	}

	body, err := json.Marshal(resource)
	if err != nil {
		return nil, &GatewayError{Endpoint: endpoint, Err: fmt.Errorf("encode resource: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &GatewayError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", fhir.MIMEFHIRJSON)
	req.Header.Set("Accept", fhir.MIMEFHIRJSON)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Str("endpoint", endpoint).Msg("failed to push to FHIR server")
		return nil, &GatewayError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	success := resp.StatusCode >= 200 && resp.StatusCode <= 299
	evt := g.logger.Info()
	if !success {
		evt = g.logger.Error()
	}
	evt.
		Str("resource_type", resource.ResourceType()).
		Str("resource_id", resourceIDOrEmpty(resource)).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("pushed resource to FHIR server")

	if !success {
		gwErr := &GatewayError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(respBody)}
		if oo, ok := fhir.ParseOperationOutcome(respBody); ok && oo.Summary() != "" {
			gwErr.Err = errors.New(oo.Summary())
		}
		return nil, gwErr
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}
	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &GatewayError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return result, nil
}
