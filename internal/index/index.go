package index

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"

	"communerag/internal/model"
)

var (
	// ErrEmptyIndex is returned when a build is attempted with zero chunks.
	ErrEmptyIndex = errors.New("no chunks to index")
	// ErrDimensionMismatch is returned when a query vector does not match the
	// index dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrCorruptIndex is returned when the two persisted artifacts disagree.
	ErrCorruptIndex = errors.New("corrupt index artifacts")
)

// SearchResult pairs a chunk with its cosine similarity to the query.
type SearchResult struct {
	Chunk model.Chunk `json:"chunk"`
	Score float32     `json:"score"`
}

// Index is an exact nearest-neighbor store over the full chunk set. Vectors
// are L2-normalized at build time so similarity reduces to a dot product.
// The corpus is one organization's documents, small enough that brute-force
// search stays fast while keeping results deterministic; once built, an
// Index is read-only and safe for concurrent searches.
type Index struct {
	chunks      []model.Chunk
	vectors     [][]float32
	dim         int
	fingerprint string
}

// Build constructs an index from parallel chunk/vector slices.
func Build(chunks []model.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: %d chunks, %d vectors", ErrCorruptIndex, len(chunks), len(vectors))
	}
	dim := len(vectors[0])
	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		normalized[i] = normalize(v)
	}
	return &Index{
		chunks:      append([]model.Chunk(nil), chunks...),
		vectors:     normalized,
		dim:         dim,
		fingerprint: fingerprintOf(chunks, dim),
	}, nil
}

func fingerprintOf(chunks []model.Chunk, dim int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:%d", len(chunks), dim)
	for i := range chunks {
		fmt.Fprintf(h, "|%s:%d", chunks[i].ID(), len(chunks[i].Text))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int { return len(idx.chunks) }

// Dimension returns the vector dimensionality fixed at build time.
func (idx *Index) Dimension() int { return idx.dim }

// Fingerprint identifies the indexed content. Two indexes built over the
// same chunk set share a fingerprint, so cached answers survive a restart
// but not a corpus change.
func (idx *Index) Fingerprint() string { return idx.fingerprint }

// Search returns up to topK chunks ordered by descending cosine similarity.
// Ties keep insertion order. The query vector need not be normalized.
func (idx *Index) Search(query []float32, topK int) ([]SearchResult, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d", ErrDimensionMismatch, len(query), idx.dim)
	}
	if topK <= 0 {
		return nil, nil
	}

	q := normalize(query)
	results := make([]SearchResult, len(idx.chunks))
	for i := range idx.chunks {
		results[i] = SearchResult{Chunk: idx.chunks[i], Score: dot(idx.vectors[i], q)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
