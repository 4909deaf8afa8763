package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communerag/internal/chunker"
	"communerag/internal/index"
	"communerag/internal/loader"
	"communerag/internal/model"
)

type fakeBatchEmbedder struct {
	err   error
	calls int
}

// one dimension per text length keeps vectors deterministic and distinct
func (e *fakeBatchEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), float32(i + 1), 1}
	}
	return out, nil
}

type fakeRegistry struct {
	rows []model.Document
	err  error
}

func (r *fakeRegistry) Replace(docs []model.Document) error {
	if r.err != nil {
		return r.err
	}
	r.rows = docs
	return nil
}

func newTestIndexService(t *testing.T, docs []loader.Document, emb BatchEmbedder, registry DocumentRegistry, holder IndexSwapper) *IndexService {
	t.Helper()
	split, err := chunker.New(32, 8)
	require.NoError(t, err)
	dir := t.TempDir()
	svc := NewIndexService(split, emb, registry, holder,
		"docs", filepath.Join(dir, "vectors.json"), filepath.Join(dir, "chunks.json"))
	svc.load = func(string) ([]loader.Document, error) { return docs, nil }
	return svc
}

func TestRebuildBuildsPersistsAndSwaps(t *testing.T) {
	docs := []loader.Document{
		{SourceID: "horaires/mairie.txt", Name: "mairie.txt", Format: "txt", Category: "horaires",
			Text: "La mairie est ouverte du lundi au vendredi, de neuf heures a dix-sept heures."},
		{SourceID: "etat-civil/actes.md", Name: "actes.md", Format: "md", Category: "etat-civil",
			Text: "Les actes de naissance se demandent au guichet de l'etat civil."},
	}
	registry := &fakeRegistry{}
	holder := index.NewHolder()
	svc := newTestIndexService(t, docs, &fakeBatchEmbedder{}, registry, holder)

	result, err := svc.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 3, result.Dimension)
	assert.Greater(t, result.Chunks, 2)

	// the new index is live
	idx := holder.Current()
	require.NotNil(t, idx)
	assert.Equal(t, result.Chunks, idx.Len())

	// registry mirrors the corpus with per-document chunk counts
	require.Len(t, registry.rows, 2)
	assert.Equal(t, "horaires/mairie.txt", registry.rows[0].SourceID)
	assert.Equal(t, "horaires", registry.rows[0].Category)
	total := 0
	for _, row := range registry.rows {
		total += row.ChunkCount
	}
	assert.Equal(t, result.Chunks, total)

	// artifacts round-trip through a fresh load
	loaded, err := index.Load(svc.vectors, svc.chunks)
	require.NoError(t, err)
	assert.Equal(t, idx.Len(), loaded.Len())
	assert.Equal(t, idx.Fingerprint(), loaded.Fingerprint())
}

func TestRebuildEmptyCorpusFails(t *testing.T) {
	holder := index.NewHolder()
	svc := newTestIndexService(t, nil, &fakeBatchEmbedder{}, &fakeRegistry{}, holder)

	_, err := svc.Rebuild(context.Background())
	require.ErrorIs(t, err, index.ErrEmptyIndex)
	assert.Nil(t, holder.Current())
}

func TestRebuildEmbeddingFailureKeepsPreviousIndex(t *testing.T) {
	previous, err := index.Build(
		[]model.Chunk{{SourceID: "old.txt", Sequence: 0, Text: "ancien contenu"}},
		[][]float32{{1, 2, 3}},
	)
	require.NoError(t, err)
	holder := index.NewHolder()
	holder.Swap(previous)

	docs := []loader.Document{{SourceID: "new.txt", Name: "new.txt", Format: "txt", Category: "root", Text: "nouveau contenu"}}
	svc := newTestIndexService(t, docs, &fakeBatchEmbedder{err: errors.New("embedding backend down")}, &fakeRegistry{}, holder)

	_, err = svc.Rebuild(context.Background())
	require.Error(t, err)
	assert.Same(t, previous, holder.Current())
}

func TestRebuildLoadErrorPropagates(t *testing.T) {
	svc := newTestIndexService(t, nil, &fakeBatchEmbedder{}, &fakeRegistry{}, index.NewHolder())
	svc.load = func(string) ([]loader.Document, error) { return nil, errors.New("no such directory") }

	_, err := svc.Rebuild(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load documents")
}
