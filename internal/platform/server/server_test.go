package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/fhir-api/internal/config"
	"github.com/ehr/fhir-api/internal/domain/push"
	"github.com/ehr/fhir-api/internal/store"
)

type recordingPusher struct {
	calls int
	last  store.Record
	err   error
}

func (p *recordingPusher) Push(_ context.Context, resource store.Record) (map[string]any, error) {
	p.calls++
	p.last = resource
	if p.err != nil {
		return nil, p.err
	}
	return map[string]any{"resourceType": resource.ResourceType(), "id": "server-1"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           "8000",
		Env:            "development",
		DataDir:        "data",
		FHIRServerURL:  config.DefaultFHIRServerURL,
		CORSOrigins:    []string{"*"},
		RateLimitRPS:   100,
		RateLimitBurst: 200,
		BodyLimit:      "2M",
	}
}

func testData() *store.Collections {
	return &store.Collections{
		Patients: []store.Record{
			{
				"resourceType": "Patient",
				"id":           "p1",
				"name":         []any{map[string]any{"given": []any{"John"}, "family": "Smith"}},
				"birthDate":    "1980-01-01",
			},
		},
		Encounters: []store.Record{
			{"resourceType": "Encounter", "id": "e1", "subject": map[string]any{"reference": "Patient/p1"}},
		},
		MedicationRequests: []store.Record{},
	}
}

func newTestServer(p push.Pusher) *echo.Echo {
	return New(testConfig(), zerolog.Nop(), testData(), p)
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	e := newTestServer(&recordingPusher{})

	rec := do(e, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["message"] != "Welcome to the FHIR API" {
		t.Errorf("unexpected message %q", body["message"])
	}
}

func TestHealth(t *testing.T) {
	e := newTestServer(&recordingPusher{})

	rec := do(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" || body["version"] != Version {
		t.Errorf("unexpected health body %v", body)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("expected X-Request-ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}

func TestPatientRoutes(t *testing.T) {
	e := newTestServer(&recordingPusher{})

	rec := do(e, http.MethodGet, "/patients/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "100" {
		t.Errorf("expected rate limit header, got %q", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec = do(e, http.MethodGet, "/patients/p1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d", rec.Code)
	}
	var detail map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if detail["full_name"] != "John Smith" {
		t.Errorf("expected John Smith, got %v", detail["full_name"])
	}
	if encs, _ := detail["encounters"].([]any); len(encs) != 1 {
		t.Errorf("expected 1 encounter, got %v", detail["encounters"])
	}

	rec = do(e, http.MethodGet, "/patients/nope/medications", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown patient: expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Patient with ID nope not found") {
		t.Errorf("unexpected 404 body %s", rec.Body.String())
	}
}

func TestPushRoute(t *testing.T) {
	p := &recordingPusher{}
	e := newTestServer(p)

	rec := do(e, http.MethodPost, "/fhir/push", `{"resource":{"resourceType":"Patient","id":"p9"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if p.calls != 1 {
		t.Fatalf("expected 1 push, got %d", p.calls)
	}
	if p.last.ID() != "p9" {
		t.Errorf("expected pushed id p9, got %q", p.last.ID())
	}
}

func TestPushRoute_GatewayFailure(t *testing.T) {
	p := &recordingPusher{err: errors.New("connection refused")}
	e := newTestServer(p)

	rec := do(e, http.MethodPost, "/fhir/push", `{"resource":{"resourceType":"Patient"}}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to push to FHIR server: connection refused") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.BodyLimit = "1K"
	p := &recordingPusher{}
	e := New(cfg, zerolog.Nop(), testData(), p)

	big := `{"resource":{"resourceType":"Patient","text":"` + strings.Repeat("x", 2048) + `"}}`
	rec := do(e, http.MethodPost, "/fhir/push", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if p.calls != 0 {
		t.Errorf("expected no push for oversized body, got %d", p.calls)
	}
}

func TestUnknownRoute(t *testing.T) {
	e := newTestServer(&recordingPusher{})

	rec := do(e, http.MethodGet, "/observations", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
