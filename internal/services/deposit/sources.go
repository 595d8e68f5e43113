package deposit

import (
	"context"
	"time"

	"cardvault/internal/models"
	"cardvault/internal/repositories"
	"cardvault/internal/repositories/cache"

	"go.uber.org/zap"
)

// dbRateSource serves wallets with rates, cache first.
type dbRateSource struct {
	wallets repositories.WalletRepository
	cache   *cache.CacheService
	logger  *zap.Logger
}

func NewRateSource(wallets repositories.WalletRepository, cacheSvc *cache.CacheService, logger *zap.Logger) RateSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dbRateSource{wallets: wallets, cache: cacheSvc, logger: logger}
}

func (s *dbRateSource) FetchWallets(ctx context.Context, userID uint) ([]models.Wallet, error) {
	if s.cache != nil {
		if wallets, err := s.cache.GetWallets(ctx, userID); err == nil {
			return wallets, nil
		}
	}

	wallets, err := s.wallets.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheWallets(ctx, userID, wallets); err != nil {
			s.logger.Warn("failed to cache wallets", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return wallets, nil
}

// dbFeeScheduleSource serves the active reload charge, cache first.
type dbFeeScheduleSource struct {
	charges repositories.CardChargeRepository
	cache   *cache.CacheService
	logger  *zap.Logger
}

func NewFeeScheduleSource(charges repositories.CardChargeRepository, cacheSvc *cache.CacheService, logger *zap.Logger) FeeScheduleSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dbFeeScheduleSource{charges: charges, cache: cacheSvc, logger: logger}
}

func (s *dbFeeScheduleSource) FetchCardReloadCharge(ctx context.Context) (*models.CardCharge, error) {
	if s.cache != nil {
		if charge, err := s.cache.GetCardCharge(ctx, models.CardReloadChargeSlug); err == nil {
			return charge, nil
		}
	}

	charge, err := s.charges.GetActiveBySlug(ctx, models.CardReloadChargeSlug)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheCardCharge(ctx, charge); err != nil {
			s.logger.Warn("failed to cache card charge", zap.Error(err))
		}
	}
	return charge, nil
}

// dbLimitLedger derives remaining allowances from the transaction ledger.
type dbLimitLedger struct {
	charges repositories.CardChargeRepository
	txns    repositories.TransactionRepository
}

func NewLimitLedger(charges repositories.CardChargeRepository, txns repositories.TransactionRepository) LimitLedger {
	return &dbLimitLedger{charges: charges, txns: txns}
}

func (l *dbLimitLedger) FetchRemainingLimits(ctx context.Context, q LimitQuery) (*models.LimitUsage, error) {
	charge, err := l.charges.GetActiveBySlug(ctx, models.CardReloadChargeSlug)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	daily, err := l.txns.ConsumedSince(ctx, q.CardID, q.TransactionType, dayStart)
	if err != nil {
		return nil, err
	}
	monthly, err := l.txns.ConsumedSince(ctx, q.CardID, q.TransactionType, monthStart)
	if err != nil {
		return nil, err
	}

	return &models.LimitUsage{
		RemainingDaily:   clampRemaining(charge.DailyLimit - daily),
		RemainingMonthly: clampRemaining(charge.MonthlyLimit - monthly),
	}, nil
}

func clampRemaining(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
