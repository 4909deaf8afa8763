package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is one already-extracted source text. The ingestion step that
// turns PDFs and office formats into plain text happens upstream; this
// loader only enumerates the extracted .txt/.md files it left behind.
type Document struct {
	SourceID string // path relative to the docs root
	Name     string
	Format   string // file extension without the dot
	Category string // first path element under the root, "root" for top-level files
	Text     string
}

// LoadDir walks root recursively and returns one Document per supported
// file. Files yielding no text are skipped.
func LoadDir(root string) ([]Document, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("docs directory %q not found", root)
	}

	var docs []Document
	err = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if ext != "txt" && ext != "md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s failed: %w", path, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		category := "root"
		if i := strings.Index(rel, "/"); i > 0 {
			category = rel[:i]
		}
		docs = append(docs, Document{
			SourceID: rel,
			Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Format:   ext,
			Category: category,
			Text:     text,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
