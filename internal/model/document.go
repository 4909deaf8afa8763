package model

import "time"

// Document is a registry row for one ingested source. The text itself is not
// stored here; it lives in the persisted index chunks. The registry only
// backs the document listing endpoint and is rewritten wholesale on reindex.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SourceID   string    `gorm:"size:512;not null;uniqueIndex" json:"source_id"`
	Name       string    `gorm:"size:256;not null" json:"name"`
	Format     string    `gorm:"size:16;not null" json:"format"`
	Category   string    `gorm:"size:128" json:"category"`
	ChunkCount int       `gorm:"not null" json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
