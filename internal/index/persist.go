package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"communerag/internal/model"
)

// The index is persisted as two co-located artifacts: the vector set and the
// parallel chunk metadata. Pairing by position is the contract, so counts
// are cross-checked on load. Vectors are written already normalized, which
// keeps load(persist(idx)) search results bit-identical.

// Persist writes both artifacts. Each file is written to a temp sibling and
// renamed so a crashed build never leaves a half-written artifact behind.
func (idx *Index) Persist(vectorsPath, chunksPath string) error {
	if err := writeJSON(vectorsPath, idx.vectors); err != nil {
		return fmt.Errorf("persist vectors failed: %w", err)
	}
	if err := writeJSON(chunksPath, idx.chunks); err != nil {
		return fmt.Errorf("persist chunks failed: %w", err)
	}
	return nil
}

// Load reads both artifacts back into a searchable index.
func Load(vectorsPath, chunksPath string) (*Index, error) {
	var vectors [][]float32
	if err := readJSON(vectorsPath, &vectors); err != nil {
		return nil, fmt.Errorf("load vectors failed: %w", err)
	}
	var chunks []model.Chunk
	if err := readJSON(chunksPath, &chunks); err != nil {
		return nil, fmt.Errorf("load chunks failed: %w", err)
	}

	if len(vectors) == 0 || len(chunks) == 0 {
		return nil, fmt.Errorf("%w: empty artifact", ErrCorruptIndex)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %d vectors, %d chunks", ErrCorruptIndex, len(vectors), len(chunks))
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d", ErrCorruptIndex, i, len(v), dim)
		}
	}
	// vectors were normalized before persisting; do not renormalize
	return &Index{
		chunks:      chunks,
		vectors:     vectors,
		dim:         dim,
		fingerprint: fingerprintOf(chunks, dim),
	}, nil
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
