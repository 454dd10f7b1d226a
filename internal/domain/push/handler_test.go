package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehr/fhir-api/internal/platform/validation"
	"github.com/ehr/fhir-api/internal/store"
)

type stubPusher struct {
	calls    int
	received store.Record
	result   map[string]any
	err      error
}

func (s *stubPusher) Push(_ context.Context, resource store.Record) (map[string]any, error) {
	s.calls++
	s.received = resource
	return s.result, s.err
}

func newTestEcho(p Pusher) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	NewHandler(p).RegisterRoutes(e.Group(""))
	return e
}

func post(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/fhir/push", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Push_Success(t *testing.T) {
	p := &stubPusher{result: map[string]any{"resourceType": "Patient", "id": "42"}}
	e := newTestEcho(p)

	rec := post(e, `{"resource":{"resourceType":"Patient","id":"42"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "42", p.received.ID())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Resource pushed to FHIR server", body["message"])
	assert.Equal(t, "42", body["result"].(map[string]any)["id"])
}

func TestHandler_Push_MissingResource(t *testing.T) {
	p := &stubPusher{}
	e := newTestEcho(p)

	rec := post(e, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "resource is required")
	assert.Zero(t, p.calls)
}

func TestHandler_Push_MalformedBody(t *testing.T) {
	p := &stubPusher{}
	e := newTestEcho(p)

	assert.Equal(t, http.StatusBadRequest, post(e, `{"resource":`).Code)
	assert.Equal(t, http.StatusBadRequest, post(e, `{"resource":"Patient/1"}`).Code)
	assert.Zero(t, p.calls)
}

func TestHandler_Push_ValidationError(t *testing.T) {
	srv := newFHIRServer(t, http.StatusOK, `{}`)
	e := newTestEcho(NewGateway(srv.URL))

	rec := post(e, `{"resource":{"id":"42"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid FHIR resource: missing resourceType")
	assert.Zero(t, srv.calls.Load())
}

func TestHandler_Push_GatewayError(t *testing.T) {
	p := &stubPusher{err: &GatewayError{Endpoint: "http://fhir/Patient", Err: errors.New("connection refused")}}
	e := newTestEcho(p)

	rec := post(e, `{"resource":{"resourceType":"Patient"}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to push to FHIR server: POST http://fhir/Patient: connection refused")
}

func TestHandler_Push_EndToEnd(t *testing.T) {
	srv := newFHIRServer(t, http.StatusCreated, `{"resourceType":"Encounter","id":"enc-9"}`)
	e := newTestEcho(NewGateway(srv.URL + "/baseR4"))

	rec := post(e, `{"resource":{"resourceType":"Encounter","status":"planned"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/baseR4/Encounter", srv.lastPath.Load())
	assert.Contains(t, rec.Body.String(), `"enc-9"`)
}
