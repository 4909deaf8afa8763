package repository

import (
	"fmt"

	"gorm.io/gorm"

	"communerag/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Replace rewrites the registry wholesale. Documents are immutable once
// ingested, so a reindex swaps the full set in one transaction.
func (r *DocumentRepository) Replace(docs []model.Document) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Document{}).Error; err != nil {
			return fmt.Errorf("clear document registry failed: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}
		if err := tx.Create(&docs).Error; err != nil {
			return fmt.Errorf("create document registry rows failed: %w", err)
		}
		return nil
	})
}

func (r *DocumentRepository) List() ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Order("source_id").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}
