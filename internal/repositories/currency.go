package repositories

import (
	"context"
	"fmt"

	"cardvault/internal/models"

	"gorm.io/gorm"
)

type CurrencyRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Currency, error)
	List(ctx context.Context) ([]models.Currency, error)
}

type currencyRepository struct {
	db *gorm.DB
}

func NewCurrencyRepository(db *gorm.DB) CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) GetByCode(ctx context.Context, code string) (*models.Currency, error) {
	var currency models.Currency
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&currency).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCurrencyNotFound
		}
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return &currency, nil
}

func (r *currencyRepository) List(ctx context.Context) ([]models.Currency, error) {
	var currencies []models.Currency
	err := r.db.WithContext(ctx).Where("status = ?", "active").Order("code ASC").Find(&currencies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}
