package deposit

import (
	"context"
	"sync"

	"cardvault/internal/models"
	"cardvault/internal/services/conversion"
	"cardvault/internal/services/limits"

	"go.uber.org/zap"
)

// SessionDeps are the collaborators a session fetches from.
type SessionDeps struct {
	Rates   RateSource
	Fees    FeeScheduleSource
	Ledger  LimitLedger
	Gateway Gateway
	Logger  *zap.Logger
}

// Session is the state machine behind one open deposit dialog for a
// single card. It is safe for concurrent use.
type Session struct {
	deps   SessionDeps
	userID uint
	card   *models.VirtualCard

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	form           formState
	wallets        []models.Wallet
	charge         *models.CardCharge
	usage          *models.LimitUsage
	walletsLoading bool
	feeLoading     bool
	limitsLoading  bool

	// limitGen tags every limit fetch; responses carrying a stale
	// generation are discarded so a slow response can never overwrite
	// a newer one.
	limitGen    uint64
	limitCancel context.CancelFunc
}

// NewSession creates a session for funding card owned by userID.
func NewSession(deps SessionDeps, userID uint, card *models.VirtualCard) *Session {
	if deps.Rates == nil {
		panic("rate source is required")
	}
	if deps.Fees == nil {
		panic("fee schedule source is required")
	}
	if deps.Ledger == nil {
		panic("limit ledger is required")
	}
	if deps.Gateway == nil {
		panic("gateway is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if card == nil {
		panic("card is required")
	}

	return &Session{
		deps:   deps,
		userID: userID,
		card:   card,
	}
}

// Open starts the session: wallets and the fee schedule are fetched
// concurrently, neither blocking the other. Once wallets arrive the
// source currency defaults to the first wallet's code.
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	if s.ctx != nil {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.walletsLoading = true
	s.feeLoading = true
	s.mu.Unlock()

	go s.fetchWallets()
	go s.fetchFeeSchedule()
}

// Close cancels the session. In-flight fetches are abandoned and their
// results never applied.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.limitCancel != nil {
		s.limitCancel()
		s.limitCancel = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) closed() bool {
	return s.ctx == nil || s.ctx.Err() != nil
}

func (s *Session) fetchWallets() {
	wallets, err := s.deps.Rates.FetchWallets(s.ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return
	}
	s.walletsLoading = false
	if err != nil {
		// Degrades to the zero calculation; the dialog stays usable.
		s.deps.Logger.Warn("wallet fetch failed", zap.Uint("user_id", s.userID), zap.Error(err))
		return
	}
	s.wallets = wallets
	if s.form.fromCurrency == "" && len(wallets) > 0 {
		s.form.fromCurrency = wallets[0].CurrencyCode
	}
}

func (s *Session) fetchFeeSchedule() {
	charge, err := s.deps.Fees.FetchCardReloadCharge(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return
	}
	s.feeLoading = false
	if err != nil {
		s.deps.Logger.Warn("fee schedule fetch failed", zap.Error(err))
		return
	}
	s.charge = charge
	s.refetchLimitsLocked()
}

// SetAmount records a new deposit amount. The conversion breakdown is
// derived synchronously from the new state; the remaining limits are
// refetched asynchronously. A non-positive amount clears the field.
func (s *Session) SetAmount(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return
	}
	s.form.amount = amount
	s.form.amountSet = amount > 0
	s.refetchLimitsLocked()
}

// SetFromCurrency selects the wallet to fund from. The conversion is
// derived from the newly selected wallet's rate; the limit tuple
// (amount, card currency, charge) is unchanged so no refetch fires.
func (s *Session) SetFromCurrency(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return
	}
	s.form.fromCurrency = code
}

// refetchLimitsLocked issues a new generation of the remaining-limit
// fetch. Skipped entirely while the fee schedule has not loaded. The
// previous in-flight request, if any, is cancelled, and stale usage is
// dropped immediately so it can never show through the loading state.
func (s *Session) refetchLimitsLocked() {
	s.usage = nil
	if s.charge == nil || s.closed() {
		return
	}

	if s.limitCancel != nil {
		s.limitCancel()
	}
	s.limitGen++
	gen := s.limitGen
	s.limitsLoading = true

	reqCtx, cancel := context.WithCancel(s.ctx)
	s.limitCancel = cancel

	q := LimitQuery{
		TransactionType: models.TransactionTypeCardFund,
		Attribute:       LimitAttribute,
		Amount:          s.form.amount,
		CurrencyCode:    s.card.CurrencyCode,
		ChargeID:        s.charge.ID,
		CardID:          s.card.ID,
	}

	go func() {
		usage, err := s.deps.Ledger.FetchRemainingLimits(reqCtx, q)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed() || gen != s.limitGen {
			return
		}
		s.limitsLoading = false
		if err != nil {
			// Advisory only: submission stays possible without limits.
			s.deps.Logger.Warn("limit fetch failed", zap.Uint("card_id", s.card.ID), zap.Error(err))
			return
		}
		s.usage = usage
	}()
}

// Snapshot derives the full display state from the current inputs.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	calc := conversion.Compute(
		s.form.amount,
		s.walletRateLocked(),
		s.card.Currency.Rate,
		s.feeLocked(),
	)

	snap := Snapshot{
		WalletsLoading: s.walletsLoading,
		FeeLoading:     s.feeLoading,
		LimitsLoading:  s.limitsLoading,
		Wallets:        s.wallets,
		FromCurrency:   s.form.fromCurrency,
		AmountSet:      s.form.amountSet,
		Amount:         s.form.amount,
		Calculation:    calc,
		Deposit:        limits.AmountPlaceholder,
		Fee:            limits.AmountPlaceholder,
		Payable:        limits.AmountPlaceholder,
		Limits:         limits.Static(s.charge, s.card.CurrencyCode),
	}

	if s.form.amountSet && !calc.Zero() {
		snap.Deposit = limits.FormatWithCode(s.form.amount*calc.ExchangeRate, s.card.CurrencyCode)
		snap.Fee = limits.FormatWithCode(calc.TotalCharge, s.card.CurrencyCode)
		snap.Payable = limits.FormatWithCode(calc.TotalAmount, s.card.CurrencyCode)
	}

	// The loading flag gates remaining limits: stale values never
	// bleed across an amount or schedule change.
	if s.limitsLoading {
		snap.Remaining = limits.Remaining(nil, s.card.CurrencyCode)
	} else {
		snap.Remaining = limits.Remaining(s.usage, s.card.CurrencyCode)
	}

	return snap
}

func (s *Session) walletRateLocked() float64 {
	for i := range s.wallets {
		if s.wallets[i].CurrencyCode == s.form.fromCurrency {
			return s.wallets[i].Currency.Rate
		}
	}
	return 0
}

func (s *Session) feeLocked() conversion.Fee {
	if s.charge == nil {
		return conversion.Fee{}
	}
	return conversion.Fee{
		FixedCharge:   s.charge.FixedCharge,
		PercentCharge: s.charge.PercentCharge,
	}
}

// Submit posts the deposit through the gateway. On success the form is
// reset and the session closed; on failure the form is preserved so the
// user can retry.
func (s *Session) Submit(ctx context.Context) (*models.Transaction, error) {
	s.mu.Lock()
	if s.closed() {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if !s.form.amountSet || s.form.amount <= 0 {
		s.mu.Unlock()
		return nil, ErrAmountRequired
	}
	if s.form.fromCurrency == "" {
		s.mu.Unlock()
		return nil, ErrCurrencyRequired
	}
	payload := Payload{
		FundAmount:   s.form.amount,
		CardID:       s.card.ID,
		Currency:     s.card.CurrencyCode,
		FromCurrency: s.form.fromCurrency,
	}
	s.mu.Unlock()

	txn, err := s.deps.Gateway.SubmitDeposit(ctx, s.userID, payload)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.form = formState{}
	s.closeLocked()
	s.mu.Unlock()

	return txn, nil
}
