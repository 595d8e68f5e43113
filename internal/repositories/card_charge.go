package repositories

import (
	"context"
	"fmt"

	"cardvault/internal/models"

	"gorm.io/gorm"
)

type CardChargeRepository interface {
	GetActiveBySlug(ctx context.Context, slug string) (*models.CardCharge, error)
}

type cardChargeRepository struct {
	db *gorm.DB
}

func NewCardChargeRepository(db *gorm.DB) CardChargeRepository {
	return &cardChargeRepository{db: db}
}

func (r *cardChargeRepository) GetActiveBySlug(ctx context.Context, slug string) (*models.CardCharge, error) {
	var charge models.CardCharge
	err := r.db.WithContext(ctx).
		Where("slug = ? AND active = ?", slug, true).
		First(&charge).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrChargeNotFound
		}
		return nil, fmt.Errorf("failed to get card charge: %w", err)
	}
	return &charge, nil
}
