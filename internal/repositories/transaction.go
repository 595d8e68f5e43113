package repositories

import (
	"context"
	"fmt"
	"time"

	"cardvault/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(txn *models.Transaction) error
	CreateInTx(tx *gorm.DB, txn *models.Transaction) error
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	ListByCardID(ctx context.Context, cardID uint, limit, offset int) ([]models.Transaction, error)

	// ConsumedSince sums completed card-currency amounts of the given
	// type for a card since the cutoff. Feeds remaining-limit figures.
	ConsumedSince(ctx context.Context, cardID uint, txType string, since time.Time) (float64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(txn *models.Transaction) error {
	if err := r.db.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) CreateInTx(tx *gorm.DB, txn *models.Transaction) error {
	if err := tx.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&txn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (r *transactionRepository) ListByCardID(ctx context.Context, cardID uint, limit, offset int) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

func (r *transactionRepository) ConsumedSince(ctx context.Context, cardID uint, txType string, since time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("card_id = ? AND type = ? AND status = ? AND created_at >= ?",
			cardID, txType, models.TransactionStatusCompleted, since).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}
