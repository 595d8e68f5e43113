package repositories

import (
	"context"
	"fmt"

	"cardvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VirtualCardRepository interface {
	Create(card *models.VirtualCard) error
	GetByID(ctx context.Context, id uint) (*models.VirtualCard, error)
	ListByUserID(ctx context.Context, userID uint) ([]models.VirtualCard, error)
	Update(card *models.VirtualCard) error

	// GetForUpdate locks the card row within tx for a balance change.
	GetForUpdate(tx *gorm.DB, id uint) (*models.VirtualCard, error)
}

type virtualCardRepository struct {
	db *gorm.DB
}

func NewVirtualCardRepository(db *gorm.DB) VirtualCardRepository {
	return &virtualCardRepository{db: db}
}

func (r *virtualCardRepository) Create(card *models.VirtualCard) error {
	if err := r.db.Create(card).Error; err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *virtualCardRepository) GetByID(ctx context.Context, id uint) (*models.VirtualCard, error) {
	var card models.VirtualCard
	err := r.db.WithContext(ctx).Preload("Currency").First(&card, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

func (r *virtualCardRepository) ListByUserID(ctx context.Context, userID uint) ([]models.VirtualCard, error) {
	var cards []models.VirtualCard
	err := r.db.WithContext(ctx).
		Preload("Currency").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (r *virtualCardRepository) Update(card *models.VirtualCard) error {
	if err := r.db.Save(card).Error; err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

func (r *virtualCardRepository) GetForUpdate(tx *gorm.DB, id uint) (*models.VirtualCard, error) {
	var card models.VirtualCard
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&card, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to lock card: %w", err)
	}
	return &card, nil
}
