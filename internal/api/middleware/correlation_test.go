package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	t.Run("generates an id when the header is absent", func(t *testing.T) {
		var captured string

		handler := CorrelationID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			captured = GetCorrelationID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		require.Len(t, captured, correlationIDLength)
		assert.Equal(t, captured, rr.Header().Get("X-Correlation-ID"))
	})

	t.Run("propagates the caller's id", func(t *testing.T) {
		var captured string

		handler := CorrelationID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			captured = GetCorrelationID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Correlation-ID", "ci-run-12345")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, "ci-run-12345", captured)
		assert.Equal(t, "ci-run-12345", rr.Header().Get("X-Correlation-ID"))
	})

	t.Run("ids are unique across requests", func(t *testing.T) {
		seen := make(map[string]bool)

		handler := CorrelationID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen[GetCorrelationID(r.Context())] = true
		}))

		for range 10 {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
		}

		assert.Len(t, seen, 10)
	})
}

func TestGetCorrelationID_MissingContext(t *testing.T) {
	assert.Equal(t, "unknown", GetCorrelationID(context.Background()))
}
