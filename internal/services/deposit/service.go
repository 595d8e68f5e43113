package deposit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardvault/internal/models"
	"cardvault/internal/repositories"
	"cardvault/internal/repositories/cache"
	"cardvault/internal/services/conversion"
	"cardvault/internal/services/limits"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the submission gateway and quote engine behind deposit
// sessions.
type Service struct {
	db      *gorm.DB
	wallets repositories.WalletRepository
	cards   repositories.VirtualCardRepository
	charges repositories.CardChargeRepository
	txns    repositories.TransactionRepository
	ledger  LimitLedger
	cache   *cache.CacheService
	logger  *zap.Logger
}

func NewService(
	db *gorm.DB,
	wallets repositories.WalletRepository,
	cards repositories.VirtualCardRepository,
	charges repositories.CardChargeRepository,
	txns repositories.TransactionRepository,
	ledger LimitLedger,
	cacheSvc *cache.CacheService,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:      db,
		wallets: wallets,
		cards:   cards,
		charges: charges,
		txns:    txns,
		ledger:  ledger,
		cache:   cacheSvc,
		logger:  logger,
	}
}

// SubmitDeposit converts p.FundAmount from the source wallet into card
// currency, applies the reload charge, and moves the money in one
// database transaction. The wallet is debited the deposit amount plus
// the fee expressed in wallet units; the card is credited the converted
// deposit.
func (s *Service) SubmitDeposit(ctx context.Context, userID uint, p Payload) (*models.Transaction, error) {
	if p.FundAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.FromCurrency == "" {
		return nil, ErrCurrencyRequired
	}

	card, err := s.cards.GetByID(ctx, p.CardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, ErrCardNotOwned
	}
	if card.Status != models.CardStatusActive {
		return nil, ErrCardNotActive
	}
	if p.Currency != "" && p.Currency != card.CurrencyCode {
		return nil, ErrCurrencyMismatch
	}

	charge, err := s.charges.GetActiveBySlug(ctx, models.CardReloadChargeSlug)
	if err != nil {
		return nil, err
	}

	wallet, err := s.wallets.GetByUserAndCurrency(ctx, userID, p.FromCurrency)
	if err != nil {
		return nil, err
	}
	if wallet.Status != "active" {
		return nil, ErrWalletNotActive
	}

	calc := conversion.Compute(p.FundAmount, wallet.Currency.Rate, card.Currency.Rate, conversion.Fee{
		FixedCharge:   charge.FixedCharge,
		PercentCharge: charge.PercentCharge,
	})
	if calc.Zero() {
		return nil, ErrInvalidAmount
	}

	converted := p.FundAmount * calc.ExchangeRate
	if converted < charge.MinLimit {
		return nil, ErrBelowMinimum
	}
	if charge.MaxLimit > 0 && converted > charge.MaxLimit {
		return nil, ErrAboveMaximum
	}

	if err := s.checkLedgerLimits(ctx, card, charge, converted); err != nil {
		return nil, err
	}

	// Fee is paid from the wallet alongside the deposit amount.
	walletDebit := p.FundAmount + calc.TotalCharge/calc.ExchangeRate

	txn := &models.Transaction{
		Reference:    uuid.NewString(),
		Type:         models.TransactionTypeCardFund,
		UserID:       userID,
		CardID:       &card.ID,
		Amount:       converted,
		Charge:       calc.TotalCharge,
		CurrencyCode: card.CurrencyCode,
		FromCurrency: p.FromCurrency,
		ExchangeRate: calc.ExchangeRate,
		Description:  fmt.Sprintf("Fund card ending %s", card.LastFour),
		Status:       models.TransactionStatusCompleted,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockedWallet, err := s.wallets.GetForUpdate(tx, userID, p.FromCurrency)
		if err != nil {
			return err
		}
		if lockedWallet.Balance < walletDebit {
			return ErrInsufficientFunds
		}
		lockedWallet.Balance -= walletDebit
		if err := tx.Save(lockedWallet).Error; err != nil {
			return fmt.Errorf("failed to debit wallet: %w", err)
		}

		lockedCard, err := s.cards.GetForUpdate(tx, card.ID)
		if err != nil {
			return err
		}
		lockedCard.Balance += converted
		if err := tx.Save(lockedCard).Error; err != nil {
			return fmt.Errorf("failed to credit card: %w", err)
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

	s.logger.Info("card funded",
		zap.Uint("user_id", userID),
		zap.Uint("card_id", card.ID),
		zap.String("reference", txn.Reference),
		zap.Float64("amount", converted),
		zap.String("currency", card.CurrencyCode),
	)

	return txn, nil
}

// checkLedgerLimits enforces the daily/monthly allowances server-side.
// The client-side figures are advisory; this is the authoritative check.
func (s *Service) checkLedgerLimits(ctx context.Context, card *models.VirtualCard, charge *models.CardCharge, converted float64) error {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	if charge.DailyLimit > 0 {
		daily, err := s.txns.ConsumedSince(ctx, card.ID, models.TransactionTypeCardFund, dayStart)
		if err != nil {
			return err
		}
		if daily+converted > charge.DailyLimit {
			return ErrDailyLimitExceeded
		}
	}

	if charge.MonthlyLimit > 0 {
		monthly, err := s.txns.ConsumedSince(ctx, card.ID, models.TransactionTypeCardFund, monthStart)
		if err != nil {
			return err
		}
		if monthly+converted > charge.MonthlyLimit {
			return ErrMonthlyLimitExceeded
		}
	}

	return nil
}

// Quote runs the calculator and presenters for a prospective deposit
// without touching balances. Limit-ledger failure degrades to
// placeholders instead of failing the quote.
func (s *Service) Quote(ctx context.Context, userID uint, req QuoteRequest) (*QuoteResponse, error) {
	card, err := s.cards.GetByID(ctx, req.CardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, ErrCardNotOwned
	}

	charge, err := s.charges.GetActiveBySlug(ctx, models.CardReloadChargeSlug)
	if err != nil {
		return nil, err
	}

	var walletRate float64
	if req.FromCurrency != "" {
		wallet, err := s.wallets.GetByUserAndCurrency(ctx, userID, req.FromCurrency)
		if err != nil && !errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, err
		}
		if wallet != nil {
			walletRate = wallet.Currency.Rate
		}
	}

	calc := conversion.Compute(req.Amount, walletRate, card.Currency.Rate, conversion.Fee{
		FixedCharge:   charge.FixedCharge,
		PercentCharge: charge.PercentCharge,
	})

	resp := &QuoteResponse{
		Calculation: calc,
		Deposit:     limits.AmountPlaceholder,
		Fee:         limits.AmountPlaceholder,
		Payable:     limits.AmountPlaceholder,
		Limits:      limits.Static(charge, card.CurrencyCode),
	}
	if req.Amount > 0 && !calc.Zero() {
		resp.Deposit = limits.FormatWithCode(req.Amount*calc.ExchangeRate, card.CurrencyCode)
		resp.Fee = limits.FormatWithCode(calc.TotalCharge, card.CurrencyCode)
		resp.Payable = limits.FormatWithCode(calc.TotalAmount, card.CurrencyCode)
	}

	usage, err := s.ledger.FetchRemainingLimits(ctx, LimitQuery{
		TransactionType: models.TransactionTypeCardFund,
		Attribute:       LimitAttribute,
		Amount:          req.Amount,
		CurrencyCode:    card.CurrencyCode,
		ChargeID:        charge.ID,
		CardID:          card.ID,
	})
	if err != nil {
		s.logger.Warn("limit fetch failed for quote", zap.Uint("card_id", card.ID), zap.Error(err))
		usage = nil
	}
	resp.Remaining = limits.Remaining(usage, card.CurrencyCode)

	return resp, nil
}
