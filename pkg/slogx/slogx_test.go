package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := slogx.New(slogx.Config{
		Output:  &buf,
		Service: "ehr-auth",
		Version: "test",
		Env:     "test",
		Level:   "debug",
	})
	return l, &buf
}

func TestNew_MasksSensitiveAttributes(t *testing.T) {
	l, buf := newBufferedLogger(t)

	l.Info("login attempt",
		"identifier", "09120000000",
		"password", "hunter2",
		"totp_secret", "JBSWY3DPEHPK3PXP",
		slog.String("Authorization", "Bearer abc"),
		slog.String("access_token", "eyJ..."),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "09120000000", entry["identifier"])
	require.Equal(t, "[REDACTED]", entry["password"])
	require.Equal(t, "[REDACTED]", entry["totp_secret"])
	require.Equal(t, "[REDACTED]", entry["Authorization"])
	require.Equal(t, "[REDACTED]", entry["access_token"])
	require.Equal(t, "ehr-auth", entry["service"])
	require.NotContains(t, buf.String(), "hunter2")
}

func TestIsSensitiveKey(t *testing.T) {
	for key, want := range map[string]bool{
		"password":         true,
		"current_password": true,
		"SECRET":           true,
		"totp_code":        true,
		"user_id":          false,
		"action":           false,
	} {
		require.Equal(t, want, slogx.IsSensitiveKey(key), key)
	}
}

func TestFromContext(t *testing.T) {
	require.Equal(t, slog.Default(), slogx.FromContext(context.Background()))

	l, buf := newBufferedLogger(t)
	ctx := slogx.WithRequestID(slogx.WithContext(context.Background(), l), "req-1")
	slogx.FromContext(ctx).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "req-1", entry["req_id"])
}

func TestHTTPMiddleware(t *testing.T) {
	l, buf := newBufferedLogger(t)

	var seen *slog.Logger
	h := slogx.HTTPMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = slogx.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

		require.Equal(t, http.StatusTeapot, rec.Code)
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		require.NotNil(t, seen)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "http_request", entry["msg"])
		require.EqualValues(t, http.StatusTeapot, entry["status"])
		require.Equal(t, rec.Header().Get("X-Request-ID"), entry["req_id"])
	})

	t.Run("keeps caller request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/livez", nil)
		req.Header.Set("X-Request-ID", "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
	})
}
