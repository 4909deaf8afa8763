package app

import (
	"context"
	"fmt"
	"log"

	"communerag/internal/chunker"
	"communerag/internal/index"
	"communerag/internal/loader"
	"communerag/internal/model"
)

// BatchEmbedder embeds a whole chunk set.
type BatchEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentRegistry mirrors the indexed corpus into the database for the
// document listing endpoint.
type DocumentRegistry interface {
	Replace(docs []model.Document) error
}

// IndexSwapper installs a freshly built index for the serving path.
type IndexSwapper interface {
	Swap(idx *index.Index)
}

// BuildResult summarizes one successful rebuild.
type BuildResult struct {
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
	Dimension int    `json:"dimension"`
	Vectors   string `json:"vectors_path"`
}

// IndexService rebuilds the search index from the document directory. A
// rebuild either completes fully, with both artifacts persisted and the
// new index swapped in, or leaves the previous index untouched.
type IndexService struct {
	splitter *chunker.Chunker
	embedder BatchEmbedder
	registry DocumentRegistry // optional
	holder   IndexSwapper     // optional, nil for offline builds
	docsDir  string
	vectors  string
	chunks   string

	load func(dir string) ([]loader.Document, error)
}

func NewIndexService(splitter *chunker.Chunker, emb BatchEmbedder, registry DocumentRegistry, holder IndexSwapper, docsDir, vectorsPath, chunksPath string) *IndexService {
	return &IndexService{
		splitter: splitter,
		embedder: emb,
		registry: registry,
		holder:   holder,
		docsDir:  docsDir,
		vectors:  vectorsPath,
		chunks:   chunksPath,
		load:     loader.LoadDir,
	}
}

// Rebuild loads every document, chunks and embeds them, and replaces the
// persisted artifacts and the active index. Any failure aborts before the
// swap so a broken corpus or a flaky embedding service cannot degrade what
// is already serving.
func (s *IndexService) Rebuild(ctx context.Context) (*BuildResult, error) {
	docs, err := s.load(s.docsDir)
	if err != nil {
		return nil, fmt.Errorf("load documents from %s failed: %w", s.docsDir, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents under %s", index.ErrEmptyIndex, s.docsDir)
	}

	var allChunks []model.Chunk
	rows := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		parts := s.splitter.Split(doc.SourceID, doc.Text)
		allChunks = append(allChunks, parts...)
		rows = append(rows, model.Document{
			SourceID:   doc.SourceID,
			Name:       doc.Name,
			Format:     doc.Format,
			Category:   doc.Category,
			ChunkCount: len(parts),
		})
	}
	if len(allChunks) == 0 {
		return nil, fmt.Errorf("%w: documents produced no chunks", index.ErrEmptyIndex)
	}

	texts := make([]string, len(allChunks))
	for i, c := range allChunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d chunks failed: %w", len(allChunks), err)
	}

	idx, err := index.Build(allChunks, vectors)
	if err != nil {
		return nil, fmt.Errorf("build index failed: %w", err)
	}
	if err := idx.Persist(s.vectors, s.chunks); err != nil {
		return nil, err
	}

	if s.registry != nil {
		if err := s.registry.Replace(rows); err != nil {
			// artifacts are already on disk, so a registry glitch only
			// degrades the document listing, not retrieval
			log.Printf("WARN: document registry update failed: %v", err)
		}
	}
	if s.holder != nil {
		s.holder.Swap(idx)
	}

	log.Printf("INFO: index rebuilt, %d documents, %d chunks, dimension %d", len(docs), idx.Len(), idx.Dimension())
	return &BuildResult{
		Documents: len(docs),
		Chunks:    idx.Len(),
		Dimension: idx.Dimension(),
		Vectors:   s.vectors,
	}, nil
}
