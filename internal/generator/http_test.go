package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrun/agentrun/internal/config"
)

func TestEcho(t *testing.T) {
	result, err := Echo{}.Generate(context.Background(), "a prompt")
	require.NoError(t, err)
	assert.Equal(t, "a prompt", result)
}

func TestHTTPGenerate(t *testing.T) {
	t.Run("JSONResponse", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "hello", body["prompt"])
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"answer": 42}`))
		}))
		defer srv.Close()

		gen := NewHTTP(config.GeneratorConfig{Endpoint: srv.URL})
		result, err := gen.Generate(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"answer": float64(42)}, result)
	})
	t.Run("PlainTextResponse", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("plain result"))
		}))
		defer srv.Close()

		gen := NewHTTP(config.GeneratorConfig{Endpoint: srv.URL})
		result, err := gen.Generate(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, "plain result", result)
	})
	t.Run("RetriesOn503", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`"ok"`))
		}))
		defer srv.Close()

		gen := NewHTTP(config.GeneratorConfig{Endpoint: srv.URL, RetryMax: 3})
		result, err := gen.Generate(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, int32(3), calls.Load())
	})
	t.Run("ClientErrorNotRetried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		gen := NewHTTP(config.GeneratorConfig{Endpoint: srv.URL, RetryMax: 3})
		_, err := gen.Generate(context.Background(), "hello")

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadRequest, statusErr.Code)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestHTTPTokenSession(t *testing.T) {
	t.Setenv("GEN_TEST_SECRET", "s3cret")

	t.Run("FetchesAndReusesToken", func(t *testing.T) {
		var tokenCalls atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("/access_token", func(w http.ResponseWriter, r *http.Request) {
			tokenCalls.Add(1)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "s3cret", r.FormValue("secret_key"))
			expiry := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
			_, _ = w.Write([]byte(`{"data": {"access_token": "tok-1", "expiration_utc": "` + expiry + `"}}`))
		})
		mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`"done"`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		gen := NewHTTP(config.GeneratorConfig{
			Endpoint:     srv.URL + "/generate",
			TokenURL:     srv.URL + "/access_token",
			SecretKeyEnv: "GEN_TEST_SECRET",
		})
		for range 3 {
			result, err := gen.Generate(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, "done", result)
		}
		assert.Equal(t, int32(1), tokenCalls.Load())
	})
	t.Run("RefreshesExpiringToken", func(t *testing.T) {
		var tokenCalls atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("/access_token", func(w http.ResponseWriter, _ *http.Request) {
			n := tokenCalls.Add(1)
			// expires inside the refresh margin, forcing a refresh next call
			expiry := time.Now().Add(30 * time.Second).UTC().Format(time.RFC3339)
			_, _ = w.Write([]byte(`{"data": {"access_token": "tok-` + string(rune('0'+n)) + `", "expiration_utc": "` + expiry + `"}}`))
		})
		mux.HandleFunc("/generate", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`"done"`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		gen := NewHTTP(config.GeneratorConfig{
			Endpoint:     srv.URL + "/generate",
			TokenURL:     srv.URL + "/access_token",
			SecretKeyEnv: "GEN_TEST_SECRET",
		})
		_, err := gen.Generate(context.Background(), "one")
		require.NoError(t, err)
		_, err = gen.Generate(context.Background(), "two")
		require.NoError(t, err)
		assert.Equal(t, int32(2), tokenCalls.Load())
	})
	t.Run("MissingSecret", func(t *testing.T) {
		gen := NewHTTP(config.GeneratorConfig{
			Endpoint:     "http://localhost/generate",
			TokenURL:     "http://localhost/access_token",
			SecretKeyEnv: "GEN_TEST_UNSET_SECRET",
		})
		_, err := gen.Generate(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrMissingSecretKey)
	})
	t.Run("NoAccessTokenInResponse", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": {}}`))
		}))
		defer srv.Close()

		gen := NewHTTP(config.GeneratorConfig{
			Endpoint:     srv.URL,
			TokenURL:     srv.URL,
			SecretKeyEnv: "GEN_TEST_SECRET",
		})
		_, err := gen.Generate(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrNoAccessToken)
	})
}
