package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatReply = `{"choices":[{"message":{"content":"bonjour"}}]}`

func newTestClient(url string, maxRetries int) *Client {
	return NewClient(ClientConfig{
		BaseURL:    url,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
	})
}

func TestCompleteRetriesTransientFailures(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if requests <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(chatReply))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	answer, err := client.Complete(context.Background(), "mistral-small-latest", []ChatMessage{{Role: "user", Content: "salut"}})
	require.NoError(t, err)
	assert.Equal(t, "bonjour", answer)
	assert.Equal(t, 3, requests)
}

func TestCompleteExhaustsRetriesThenFails(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	_, err := client.Complete(context.Background(), "m", []ChatMessage{{Role: "user", Content: "q"}})
	require.ErrorIs(t, err, ErrGenerationService)
	// initial attempt plus MaxRetries
	assert.Equal(t, 3, requests)
}

func TestCompleteClientErrorIsNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.Complete(context.Background(), "m", []ChatMessage{{Role: "user", Content: "q"}})
	require.ErrorIs(t, err, ErrGenerationService)
	assert.Equal(t, 1, requests)
}

func TestCompleteNetworkErrorSurfacesSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.Complete(context.Background(), "m", []ChatMessage{{Role: "user", Content: "q"}})
	require.ErrorIs(t, err, ErrGenerationService)
}

func TestEmbedBatchRetriesRateLimit(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/embeddings", r.URL.Path)
		if requests == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2]},{"embedding":[0.3,0.4]}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)
	vectors, err := client.EmbedBatch(context.Background(), "mistral-embed", []string{"un", "deux"})
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
}

func TestEmbedBatchRejectsCountMismatch(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1]}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	_, err := client.EmbedBatch(context.Background(), "mistral-embed", []string{"un", "deux"})
	require.ErrorIs(t, err, ErrEmbeddingService)
	// a malformed payload is not a transient failure
	assert.Equal(t, 1, requests)
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0", 0)
	vectors, err := client.EmbedBatch(context.Background(), "mistral-embed", nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestRetryDelayGrowthAndCap(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(0))
	assert.Equal(t, 400*time.Millisecond, retryDelay(1))
	assert.Equal(t, 800*time.Millisecond, retryDelay(2))
	assert.Equal(t, 5*time.Second, retryDelay(5))
	assert.Equal(t, 200*time.Millisecond, retryDelay(-1))
}
