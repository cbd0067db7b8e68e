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
)

func candidateBody(text string) string {
	raw, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(raw)
}

func testGenerator(serverURL string) *geminiGenerator {
	return &geminiGenerator{
		client:     http.DefaultClient,
		apiKey:     "test-key",
		baseURL:    serverURL,
		retryDelay: time.Millisecond,
	}
}

func TestGeminiGenerator_Generate(t *testing.T) {
	draftJSON := `{"title":"Go Meetup","description":"Talks and pizza","category":"tech","suggestedCapacity":80,"suggestedTicketType":"free"}`

	t.Run("decodes a plain JSON draft", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
			w.Write([]byte(candidateBody(draftJSON)))
		}))
		defer srv.Close()

		draft, err := testGenerator(srv.URL).Generate(context.Background(), "a go meetup")
		require.NoError(t, err)
		assert.Equal(t, "Go Meetup", draft.Title)
		assert.Equal(t, 80, draft.SuggestedCapacity)
		assert.Equal(t, "free", draft.SuggestedTicketType)
	})

	t.Run("strips markdown code fences", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(candidateBody("```json\n" + draftJSON + "\n```")))
		}))
		defer srv.Close()

		draft, err := testGenerator(srv.URL).Generate(context.Background(), "a go meetup")
		require.NoError(t, err)
		assert.Equal(t, "Go Meetup", draft.Title)
	})

	t.Run("retries rate-limited responses", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(candidateBody(draftJSON)))
		}))
		defer srv.Close()

		draft, err := testGenerator(srv.URL).Generate(context.Background(), "a go meetup")
		require.NoError(t, err)
		assert.Equal(t, "Go Meetup", draft.Title)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := testGenerator(srv.URL).Generate(context.Background(), "a go meetup")
		require.Error(t, err)
		assert.Equal(t, int32(maxAttempts), calls.Load())
	})

	t.Run("non-retryable status fails immediately", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := testGenerator(srv.URL).Generate(context.Background(), "a go meetup")
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("malformed draft JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(candidateBody("sorry, I cannot help with that")))
		}))
		defer srv.Close()

		_, err := testGenerator(srv.URL).Generate(context.Background(), "a go meetup")
		require.Error(t, err)
	})

	t.Run("no candidates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[]}`))
		}))
		defer srv.Close()

		_, err := testGenerator(srv.URL).Generate(context.Background(), "a go meetup")
		require.Error(t, err)
	})
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFences(tt.in))
	}
}
