package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"communerag/internal/model"
)

type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Create(record *model.Interaction) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("create interaction failed: %w", err)
	}
	return nil
}

// SetFeedback attaches user feedback to an already-logged interaction.
// Returns (false, nil) when no interaction with that id exists.
func (r *InteractionRepository) SetFeedback(interactionID, feedback, comment string) (bool, error) {
	result := r.db.Model(&model.Interaction{}).
		Where("interaction_id = ?", interactionID).
		Updates(map[string]interface{}{
			"feedback":         feedback,
			"feedback_comment": comment,
		})
	if result.Error != nil {
		return false, fmt.Errorf("set interaction feedback failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *InteractionRepository) GetByInteractionID(interactionID string) (*model.Interaction, error) {
	var record model.Interaction
	err := r.db.Where("interaction_id = ?", interactionID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get interaction failed: %w", err)
	}
	return &record, nil
}
