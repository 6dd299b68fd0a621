package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-gpt-relay/internal/model"
	"whatsapp-gpt-relay/pkg/logger"
)

func TestWrap_AssignsRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	NewRequestLogger(logger.Discard()).Wrap(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
}

func TestWrap_KeepsIncomingRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	NewRequestLogger(logger.Discard()).Wrap(next).ServeHTTP(rr, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rr.Header().Get(RequestIDHeader))
}

func TestWrap_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil completion client")
	})

	rr := httptest.NewRecorder()
	require.NotPanics(t, func() {
		NewRequestLogger(logger.NewWithWriter(&buf, "INFO")).Wrap(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/whatsapp", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var resp model.WebhookResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Error processing the message", resp.Message)
	assert.Contains(t, buf.String(), "Panic while handling request")
	assert.Contains(t, buf.String(), `"status":500`)
}

func TestRequestIDEmptyContext(t *testing.T) {
	assert.Empty(t, RequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
