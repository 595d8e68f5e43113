package wallet

import (
	"context"
	"fmt"

	"cardvault/internal/models"
	"cardvault/internal/repositories"
	"cardvault/internal/repositories/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service manages user wallets: listing with rates, creation, and
// funding from an external card through the payment processor.
type Service interface {
	ListWallets(ctx context.Context, userID uint) ([]models.Wallet, error)
	GetBalance(ctx context.Context, userID uint, currencyCode string) (float64, error)
	CreateWallet(ctx context.Context, userID uint, currencyCode string) (*models.Wallet, error)
	TopUp(ctx context.Context, userID uint, input TopUpInput) (*models.Transaction, error)
}

type service struct {
	db         *gorm.DB
	repo       repositories.WalletRepository
	currencies repositories.CurrencyRepository
	txns       repositories.TransactionRepository
	cache      *cache.CacheService
	processor  Processor
	config     Config
	logger     *zap.Logger
}

// NewService creates a new wallet service.
func NewService(
	db *gorm.DB,
	repo repositories.WalletRepository,
	currencies repositories.CurrencyRepository,
	txns repositories.TransactionRepository,
	cacheSvc *cache.CacheService,
	processor Processor,
	config Config,
	logger *zap.Logger,
) Service {
	if repo == nil {
		panic("wallet repository is required")
	}
	if currencies == nil {
		panic("currency repository is required")
	}

	if config.DefaultCurrency == "" {
		config.DefaultCurrency = "USD"
	}
	if config.MinTransactionAmount == 0 {
		config.MinTransactionAmount = 1
	}
	if config.MaxTransactionAmount == 0 {
		config.MaxTransactionAmount = 50000
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		db:         db,
		repo:       repo,
		currencies: currencies,
		txns:       txns,
		cache:      cacheSvc,
		processor:  processor,
		config:     config,
		logger:     logger,
	}
}

func (s *service) ListWallets(ctx context.Context, userID uint) ([]models.Wallet, error) {
	if s.cache != nil {
		if wallets, err := s.cache.GetWallets(ctx, userID); err == nil {
			return wallets, nil
		}
	}

	wallets, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheWallets(ctx, userID, wallets); err != nil {
			s.logger.Warn("failed to cache wallets", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return wallets, nil
}

func (s *service) GetBalance(ctx context.Context, userID uint, currencyCode string) (float64, error) {
	wallet, err := s.repo.GetByUserAndCurrency(ctx, userID, currencyCode)
	if err != nil {
		if err == repositories.ErrWalletNotFound {
			return 0, ErrWalletNotFound
		}
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet.Balance, nil
}

func (s *service) CreateWallet(ctx context.Context, userID uint, currencyCode string) (*models.Wallet, error) {
	if currencyCode == "" {
		currencyCode = s.config.DefaultCurrency
	}
	if _, err := s.currencies.GetByCode(ctx, currencyCode); err != nil {
		return nil, ErrInvalidCurrency
	}

	wallet := &models.Wallet{
		UserID:       userID,
		CurrencyCode: currencyCode,
		Balance:      0,
		Status:       "active",
	}
	if err := s.repo.Create(wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateWallets(ctx, userID); err != nil {
			s.logger.Warn("failed to invalidate wallet cache", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return wallet, nil
}

// TopUp charges the external card and credits the wallet. The processor
// charge happens before the balance change; a declined charge leaves the
// wallet untouched.
func (s *service) TopUp(ctx context.Context, userID uint, input TopUpInput) (*models.Transaction, error) {
	if input.Amount < s.config.MinTransactionAmount || input.Amount > s.config.MaxTransactionAmount {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.repo.GetByUserAndCurrency(ctx, userID, input.CurrencyCode)
	if err != nil {
		if err == repositories.ErrWalletNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet.Status != "active" {
		return nil, ErrWalletLocked
	}

	chargeID, err := s.processor.Charge(ctx, input.Token, input.CurrencyCode, input.Amount)
	if err != nil {
		s.logger.Warn("top-up charge declined",
			zap.Uint("user_id", userID),
			zap.String("currency", input.CurrencyCode),
			zap.Error(err),
		)
		return nil, ErrPaymentDeclined
	}

	txn := &models.Transaction{
		Reference:    uuid.NewString(),
		Type:         models.TransactionTypeTopup,
		UserID:       userID,
		Amount:       input.Amount,
		CurrencyCode: input.CurrencyCode,
		Description:  fmt.Sprintf("Wallet top-up via card (%s)", chargeID),
		Status:       models.TransactionStatusCompleted,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.repo.GetForUpdate(tx, userID, input.CurrencyCode)
		if err != nil {
			return err
		}
		locked.Balance += input.Amount
		if err := tx.Save(locked).Error; err != nil {
			return fmt.Errorf("failed to credit wallet: %w", err)
		}
		return s.txns.CreateInTx(tx, txn)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateWallets(ctx, userID); err != nil {
			s.logger.Warn("failed to invalidate wallet cache", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	s.logger.Info("wallet topped up",
		zap.Uint("user_id", userID),
		zap.String("currency", input.CurrencyCode),
		zap.Float64("amount", input.Amount),
	)
	return txn, nil
}
