package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"communerag/internal/model"
)

type APIClientRepository struct {
	db *gorm.DB
}

func NewAPIClientRepository(db *gorm.DB) *APIClientRepository {
	return &APIClientRepository{db: db}
}

func (r *APIClientRepository) Create(client *model.APIClient) error {
	if err := r.db.Create(client).Error; err != nil {
		return fmt.Errorf("create api client failed: %w", err)
	}
	return nil
}

func (r *APIClientRepository) GetByName(name string) (*model.APIClient, error) {
	var client model.APIClient
	err := r.db.Where("name = ?", name).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get api client failed: %w", err)
	}
	return &client, nil
}

func (r *APIClientRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&model.APIClient{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count api clients failed: %w", err)
	}
	return n, nil
}
