package embedder

import (
	"context"
	"fmt"
	"sync"

	"communerag/internal/ai"
)

const defaultBatchSize = 10 // Mistral and similar APIs limit batch size

// EmbeddingClient is the slice of the AI client the embedder needs.
type EmbeddingClient interface {
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// Embedder maps batches of text to fixed-length vectors. Large inputs are
// split into provider-sized batches transparently; batches are embedded with
// bounded concurrency since chunks are independent. The first dimensionality
// seen is pinned for the process lifetime and later mismatches are rejected.
type Embedder struct {
	client      EmbeddingClient
	model       string
	batchSize   int
	concurrency int

	mu  sync.Mutex
	dim int
}

func New(client EmbeddingClient, model string, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Embedder{
		client:      client,
		model:       model,
		batchSize:   batchSize,
		concurrency: 4,
	}
}

// Dimension returns the pinned vector dimensionality, 0 before the first
// successful call.
func (e *Embedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dim
}

// Embed returns one vector per input text, order-preserving.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	type batch struct {
		start int
		texts []string
	}
	var batches []batch
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, batch{start: i, texts: texts[i:end]})
	}

	vectors := make([][]float32, len(texts))
	sem := make(chan struct{}, e.concurrency)
	errCh := make(chan error, len(batches))
	var wg sync.WaitGroup
	for _, b := range batches {
		wg.Add(1)
		sem <- struct{}{}
		go func(b batch) {
			defer wg.Done()
			defer func() { <-sem }()

			out, err := e.client.EmbedBatch(ctx, e.model, b.texts)
			if err != nil {
				errCh <- err
				return
			}
			if len(out) != len(b.texts) {
				errCh <- fmt.Errorf("%w: got %d vectors for %d texts", ai.ErrEmbeddingService, len(out), len(b.texts))
				return
			}
			copy(vectors[b.start:], out)
		}(b)
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}

	if err := e.checkDimensions(vectors); err != nil {
		return nil, err
	}
	return vectors, nil
}

// EmbedOne embeds a single text, typically the user question.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) checkDimensions(vectors [][]float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, v := range vectors {
		if e.dim == 0 {
			e.dim = len(v)
		}
		if len(v) != e.dim {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d", ai.ErrEmbeddingService, i, len(v), e.dim)
		}
	}
	return nil
}
