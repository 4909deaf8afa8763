package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communerag/internal/model"
)

func chunkN(n int) model.Chunk {
	return model.Chunk{SourceID: "doc.txt", Sequence: n, Text: "chunk", Start: n * 10, End: n*10 + 10}
}

func TestBuild_EmptyChunks(t *testing.T) {
	_, err := Build(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestBuild_MixedDimensions(t *testing.T) {
	chunks := []model.Chunk{chunkN(0), chunkN(1)}
	vectors := [][]float32{{1, 0, 0}, {1, 0}}
	_, err := Build(chunks, vectors)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSearch_TopKOrdering(t *testing.T) {
	chunks := []model.Chunk{chunkN(0), chunkN(1), chunkN(2), chunkN(3)}
	// similarities to (1,0): 1.0, 0.0, ~0.707, ~0.894
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{1, 1},
		{2, 1},
	}
	idx, err := Build(chunks, vectors)
	require.NoError(t, err)

	results, err := idx.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 0, results[0].Chunk.Sequence)
	assert.Equal(t, 3, results[1].Chunk.Sequence)
	assert.Equal(t, 2, results[2].Chunk.Sequence)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	chunks := []model.Chunk{chunkN(0), chunkN(1), chunkN(2)}
	// first and last are identical directions, so they tie exactly
	vectors := [][]float32{
		{3, 0},
		{0, 1},
		{5, 0},
	}
	idx, err := Build(chunks, vectors)
	require.NoError(t, err)

	results, err := idx.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 0, results[0].Chunk.Sequence)
	assert.Equal(t, 2, results[1].Chunk.Sequence)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestSearch_KAboveCorpusSize(t *testing.T) {
	idx, err := Build([]model.Chunk{chunkN(0)}, [][]float32{{1, 2, 3}})
	require.NoError(t, err)

	results, err := idx.Search([]float32{1, 2, 3}, 20)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
}

func TestSearch_UnnormalizedInputs(t *testing.T) {
	// identical direction at very different magnitudes must still score 1
	idx, err := Build([]model.Chunk{chunkN(0)}, [][]float32{{100, 200}})
	require.NoError(t, err)

	results, err := idx.Search([]float32{0.001, 0.002}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx, err := Build([]model.Chunk{chunkN(0)}, [][]float32{{1, 0, 0}})
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPersistLoad_RoundTrip(t *testing.T) {
	chunks := []model.Chunk{
		{SourceID: "a.txt", Sequence: 0, Text: "la mairie est ouverte", Start: 0, End: 21},
		{SourceID: "a.txt", Sequence: 1, Text: "du lundi au vendredi", Start: 15, End: 35},
		{SourceID: "b.md", Sequence: 0, Text: "conseil municipal", Start: 0, End: 17},
	}
	vectors := [][]float32{
		{0.1, 0.9, 0.3},
		{0.8, 0.2, 0.1},
		{0.4, 0.4, 0.7},
	}
	idx, err := Build(chunks, vectors)
	require.NoError(t, err)

	dir := t.TempDir()
	vecPath := filepath.Join(dir, "vectors.json")
	chunkPath := filepath.Join(dir, "chunks.json")
	require.NoError(t, idx.Persist(vecPath, chunkPath))

	loaded, err := Load(vecPath, chunkPath)
	require.NoError(t, err)
	assert.Equal(t, idx.Len(), loaded.Len())
	assert.Equal(t, idx.Dimension(), loaded.Dimension())

	query := []float32{0.5, 0.1, 0.4}
	want, err := idx.Search(query, 3)
	require.NoError(t, err)
	got, err := loaded.Search(query, 3)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Chunk, got[i].Chunk)
		assert.Equal(t, want[i].Score, got[i].Score, "score %d drifted across round-trip", i)
	}
}

func TestLoad_CountMismatch(t *testing.T) {
	chunks := []model.Chunk{chunkN(0), chunkN(1)}
	vectors := [][]float32{{1, 0}, {0, 1}}
	idx, err := Build(chunks, vectors)
	require.NoError(t, err)

	dir := t.TempDir()
	vecPath := filepath.Join(dir, "vectors.json")
	chunkPath := filepath.Join(dir, "chunks.json")
	require.NoError(t, idx.Persist(vecPath, chunkPath))

	// rewrite the chunks artifact with one entry missing
	short, err := Build(chunks[:1], vectors[:1])
	require.NoError(t, err)
	require.NoError(t, short.Persist(filepath.Join(dir, "other.json"), chunkPath))

	_, err = Load(vecPath, chunkPath)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestHolder_SwapIsVisible(t *testing.T) {
	h := NewHolder()
	assert.Nil(t, h.Current())

	idx, err := Build([]model.Chunk{chunkN(0)}, [][]float32{{1, 0}})
	require.NoError(t, err)
	h.Swap(idx)
	assert.Same(t, idx, h.Current())

	rebuilt, err := Build([]model.Chunk{chunkN(1)}, [][]float32{{0, 1}})
	require.NoError(t, err)
	h.Swap(rebuilt)
	assert.Same(t, rebuilt, h.Current())
}
