package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edustats/internal/shared/testutil"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantLevel  slog.Level
	}{
		{
			name:       "country not found",
			err:        CountryNotFoundError("ZZZ"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeCountryNotFound,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "wrapped data not found",
			err:        fmt.Errorf("open clean table: %w", ErrDataNotFound),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDataNotFound,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "app validation error",
			err:        NewAppValidationError("invalid pipeline inputs"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "app parsing error",
			err:        NewParsingError("decode insights", errors.New("bad json")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeDataCorrupted,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "app not found error",
			err:        NewNotFoundError("clean table", os.ErrNotExist),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "unknown error is internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/api/country/ZZZ", nil)
			w := httptest.NewRecorder()
			handler.HandleError(w, req, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/country/ZZZ", body["instance"])
			assert.NotContains(t, body, "stack")
			testutil.AssertLogContains(t, logs, tt.wantLevel, "request failed")
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, w.Body.Len())
	assert.Equal(t, 0, logs.Count())
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil), errors.New("boom"))

	body := decodeProblem(t, w)
	assert.Contains(t, body, "stack")
}

func TestErrorHandler_APIErrorDetails(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	req := httptest.NewRequest(http.MethodGet, "/api/country/zzz", nil)
	problem := handler.ErrorToProblem(CountryNotFoundError("ZZZ"), req)

	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, "COUNTRY_NOT_FOUND", problem.Extensions["error_code"])
	assert.Equal(t, map[string]string{"country_code": "ZZZ"}, problem.Extensions["details"])
}

func TestErrorHandler_Recoverer(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	panicking := handler.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))

	w := httptest.NewRecorder()
	panicking.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/countries", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeInternal, body["type"])
	assert.NotContains(t, body, "panic")
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodPost, "/api/countries", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeMethod, body["type"])
	assert.Equal(t, "Method POST is not allowed for this endpoint", body["detail"])
}
