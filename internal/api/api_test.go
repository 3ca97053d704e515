package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strefethen/sonos-remote-go/internal/apperrors"
)

func TestHandlerWritesAppError(t *testing.T) {
	handler := Handler(func(w http.ResponseWriter, r *http.Request) error {
		return apperrors.NewSonosUnreachableError("speaker did not respond")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var body StripeErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "SONOS_UNREACHABLE", body.Error.Code)
	require.Equal(t, apperrors.ErrorTypeAPIError, body.Error.Type)
}

func TestHandlerHidesPlainErrors(t *testing.T) {
	handler := Handler(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("secret detail")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret detail")
}

func TestRecovererMiddleware(t *testing.T) {
	handler := RecovererMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get("x-request-id"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-request-id", "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", seen)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Volume int `json:"volume"`
	}

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"volume": 12}`))
	require.NoError(t, DecodeJSON(req, &dst))
	require.Equal(t, 12, dst.Volume)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"level": 12}`))
	err := DecodeJSON(req, &dst)
	require.Error(t, err)
	require.Equal(t, apperrors.ErrorCodeValidationError, apperrors.EnsureAppError(err).Code)
}
