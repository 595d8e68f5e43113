package deposit

import (
	"context"
	"errors"
	"testing"
	"time"

	"cardvault/internal/models"
	"cardvault/internal/services/limits"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchWallets(ctx context.Context, userID uint) ([]models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Wallet), args.Error(1)
}

type MockFeeSource struct {
	mock.Mock
}

func (m *MockFeeSource) FetchCardReloadCharge(ctx context.Context) (*models.CardCharge, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CardCharge), args.Error(1)
}

type MockLimitLedger struct {
	mock.Mock
}

func (m *MockLimitLedger) FetchRemainingLimits(ctx context.Context, q LimitQuery) (*models.LimitUsage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LimitUsage), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SubmitDeposit(ctx context.Context, userID uint, p Payload) (*models.Transaction, error) {
	args := m.Called(ctx, userID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func testWallets() []models.Wallet {
	return []models.Wallet{
		{ID: 1, UserID: 1, CurrencyCode: "USD", Balance: 500, Status: "active",
			Currency: models.Currency{Code: "USD", Rate: 1.0}},
		{ID: 2, UserID: 1, CurrencyCode: "GBP", Balance: 200, Status: "active",
			Currency: models.Currency{Code: "GBP", Rate: 1.3}},
	}
}

func testCard() *models.VirtualCard {
	return &models.VirtualCard{
		ID:           7,
		UserID:       1,
		LastFour:     "4242",
		CurrencyCode: "EUR",
		Status:       models.CardStatusActive,
		Currency:     models.Currency{Code: "EUR", Rate: 0.9},
	}
}

func testCharge() *models.CardCharge {
	return &models.CardCharge{
		ID:            3,
		Slug:          models.CardReloadChargeSlug,
		FixedCharge:   1,
		PercentCharge: 2,
		MinLimit:      10,
		MaxLimit:      5000,
		DailyLimit:    1000,
		MonthlyLimit:  10000,
	}
}

func newTestSession(t *testing.T, rates *MockRateSource, fees *MockFeeSource, ledger *MockLimitLedger, gateway *MockGateway) *Session {
	t.Helper()
	s := NewSession(SessionDeps{
		Rates:   rates,
		Fees:    fees,
		Ledger:  ledger,
		Gateway: gateway,
	}, 1, testCard())
	t.Cleanup(s.Close)
	return s
}

func waitLoaded(t *testing.T, s *Session) {
	t.Helper()
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return !snap.WalletsLoading && !snap.FeeLoading
	}, time.Second, time.Millisecond)
}

func TestSessionOpenDefaultsFromCurrency(t *testing.T) {
	rates := new(MockRateSource)
	fees := new(MockFeeSource)
	ledger := new(MockLimitLedger)
	gateway := new(MockGateway)

	rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
	fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)
	ledger.On("FetchRemainingLimits", mock.Anything, mock.Anything).
		Return(&models.LimitUsage{RemainingDaily: 1000, RemainingMonthly: 10000}, nil)

	s := newTestSession(t, rates, fees, ledger, gateway)
	s.Open(context.Background())
	waitLoaded(t, s)

	snap := s.Snapshot()
	assert.Equal(t, "USD", snap.FromCurrency)
	assert.Len(t, snap.Wallets, 2)
	assert.Equal(t, "10.0000 EUR", snap.Limits.MinLimit)
}

func TestSessionRecomputesOnAmountChange(t *testing.T) {
	rates := new(MockRateSource)
	fees := new(MockFeeSource)
	ledger := new(MockLimitLedger)
	gateway := new(MockGateway)

	rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
	fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)
	ledger.On("FetchRemainingLimits", mock.Anything, mock.Anything).
		Return(&models.LimitUsage{RemainingDaily: 887.7778, RemainingMonthly: 9885.77}, nil)

	s := newTestSession(t, rates, fees, ledger, gateway)
	s.Open(context.Background())
	waitLoaded(t, s)

	s.SetAmount(100)

	snap := s.Snapshot()
	assert.InDelta(t, 1.1111, snap.Calculation.ExchangeRate, 0.01)
	assert.InDelta(t, 3.1222, snap.Calculation.TotalCharge, 0.01)
	assert.InDelta(t, 114.23, snap.Calculation.TotalAmount, 0.01)
	assert.Equal(t, "111.1111 EUR", snap.Deposit)
	assert.Equal(t, "3.1222 EUR", snap.Fee)
	assert.Equal(t, "114.2333 EUR", snap.Payable)

	assert.Eventually(t, func() bool {
		return s.Snapshot().Remaining.DailyLimit == "887.7778 EUR"
	}, time.Second, time.Millisecond)
}

func TestSessionUnsetAmountRendersPlaceholders(t *testing.T) {
	rates := new(MockRateSource)
	fees := new(MockFeeSource)
	ledger := new(MockLimitLedger)
	gateway := new(MockGateway)

	rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
	fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)
	ledger.On("FetchRemainingLimits", mock.Anything, mock.Anything).
		Return(&models.LimitUsage{}, nil)

	s := newTestSession(t, rates, fees, ledger, gateway)
	s.Open(context.Background())
	waitLoaded(t, s)

	snap := s.Snapshot()
	assert.True(t, snap.Calculation.Zero())
	assert.Equal(t, limits.AmountPlaceholder, snap.Deposit)
	assert.Equal(t, limits.AmountPlaceholder, snap.Fee)
	assert.Equal(t, limits.AmountPlaceholder, snap.Payable)

	// Clearing a previously set amount returns to placeholders.
	s.SetAmount(100)
	s.SetAmount(0)
	snap = s.Snapshot()
	assert.Equal(t, limits.AmountPlaceholder, snap.Payable)
	assert.False(t, snap.AmountSet)
}

func TestSessionNoLimitFetchBeforeFeeLoaded(t *testing.T) {
	rates := new(MockRateSource)
	fees := new(MockFeeSource)
	ledger := new(MockLimitLedger)
	gateway := new(MockGateway)

	feeGate := make(chan time.Time)
	rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
	fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil).WaitUntil(feeGate)

	s := newTestSession(t, rates, fees, ledger, gateway)
	s.Open(context.Background())

	require.Eventually(t, func() bool {
		return !s.Snapshot().WalletsLoading
	}, time.Second, time.Millisecond)

	// Fee schedule still in flight: amount changes must not hit the ledger.
	s.SetAmount(100)
	s.SetAmount(250)
	ledger.AssertNotCalled(t, "FetchRemainingLimits", mock.Anything, mock.Anything)

	ledger.On("FetchRemainingLimits", mock.Anything, mock.Anything).
		Return(&models.LimitUsage{RemainingDaily: 1000, RemainingMonthly: 10000}, nil)
	close(feeGate)

	assert.Eventually(t, func() bool {
		return s.Snapshot().Remaining.DailyLimit == "1000.0000 EUR"
	}, time.Second, time.Millisecond)
	ledger.AssertCalled(t, "FetchRemainingLimits", mock.Anything, mock.MatchedBy(func(q LimitQuery) bool {
		return q.Amount == 250 && q.ChargeID == 3 && q.CurrencyCode == "EUR"
	}))
}

func TestSessionStaleLimitResponseDiscarded(t *testing.T) {
	rates := new(MockRateSource)
	fees := new(MockFeeSource)
	ledger := new(MockLimitLedger)
	gateway := new(MockGateway)

	rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
	fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)

	slowGate := make(chan time.Time)
	fastGate := make(chan time.Time)

	ledger.On("FetchRemainingLimits", mock.Anything, mock.MatchedBy(func(q LimitQuery) bool {
		return q.Amount == 0
	})).Return(&models.LimitUsage{}, nil)
	// First fetch (amount=100) resolves last; second (amount=200) first.
	ledger.On("FetchRemainingLimits", mock.Anything, mock.MatchedBy(func(q LimitQuery) bool {
		return q.Amount == 100
	})).Return(&models.LimitUsage{RemainingDaily: 111, RemainingMonthly: 111}, nil).WaitUntil(slowGate)
	ledger.On("FetchRemainingLimits", mock.Anything, mock.MatchedBy(func(q LimitQuery) bool {
		return q.Amount == 200
	})).Return(&models.LimitUsage{RemainingDaily: 222, RemainingMonthly: 222}, nil).WaitUntil(fastGate)

	s := newTestSession(t, rates, fees, ledger, gateway)
	s.Open(context.Background())
	waitLoaded(t, s)

	s.SetAmount(100)
	s.SetAmount(200)

	close(fastGate)
	assert.Eventually(t, func() bool {
		return s.Snapshot().Remaining.DailyLimit == "222.0000 EUR"
	}, time.Second, time.Millisecond)

	close(slowGate)
	// The slow response belongs to a stale generation and must not win.
	assert.Never(t, func() bool {
		return s.Snapshot().Remaining.DailyLimit == "111.0000 EUR"
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestSessionLimitsLoadingGatesDisplay(t *testing.T) {
	rates := new(MockRateSource)
	fees := new(MockFeeSource)
	ledger := new(MockLimitLedger)
	gateway := new(MockGateway)

	rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
	fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)

	firstGate := make(chan time.Time)
	ledger.On("FetchRemainingLimits", mock.Anything, mock.MatchedBy(func(q LimitQuery) bool {
		return q.Amount == 0
	})).Return(&models.LimitUsage{RemainingDaily: 1000, RemainingMonthly: 10000}, nil).Once()
	ledger.On("FetchRemainingLimits", mock.Anything, mock.MatchedBy(func(q LimitQuery) bool {
		return q.Amount == 100
	})).Return(&models.LimitUsage{RemainingDaily: 888, RemainingMonthly: 9888}, nil).WaitUntil(firstGate)

	s := newTestSession(t, rates, fees, ledger, gateway)
	s.Open(context.Background())
	waitLoaded(t, s)

	assert.Eventually(t, func() bool {
		return s.Snapshot().Remaining.DailyLimit == "1000.0000 EUR"
	}, time.Second, time.Millisecond)

	// While the refetch is in flight the old figures must not leak.
	s.SetAmount(100)
	snap := s.Snapshot()
	assert.True(t, snap.LimitsLoading)
	assert.Equal(t, limits.Placeholder, snap.Remaining.DailyLimit)
	assert.Equal(t, limits.Placeholder, snap.Remaining.MonthlyLimit)

	close(firstGate)
	assert.Eventually(t, func() bool {
		return s.Snapshot().Remaining.DailyLimit == "888.0000 EUR"
	}, time.Second, time.Millisecond)
}

func TestSessionFromCurrencySwitchUsesNewRate(t *testing.T) {
	rates := new(MockRateSource)
	fees := new(MockFeeSource)
	ledger := new(MockLimitLedger)
	gateway := new(MockGateway)

	rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
	fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)
	ledger.On("FetchRemainingLimits", mock.Anything, mock.Anything).
		Return(&models.LimitUsage{}, nil)

	s := newTestSession(t, rates, fees, ledger, gateway)
	s.Open(context.Background())
	waitLoaded(t, s)

	s.SetAmount(100)
	usd := s.Snapshot()
	require.InDelta(t, 1.0/0.9, usd.Calculation.ExchangeRate, 1e-9)

	s.SetFromCurrency("GBP")
	gbp := s.Snapshot()
	assert.InDelta(t, 1.3/0.9, gbp.Calculation.ExchangeRate, 1e-9)
	assert.NotEqual(t, usd.Payable, gbp.Payable)
}

func TestSessionWalletFetchFailureDegrades(t *testing.T) {
	rates := new(MockRateSource)
	fees := new(MockFeeSource)
	ledger := new(MockLimitLedger)
	gateway := new(MockGateway)

	rates.On("FetchWallets", mock.Anything, uint(1)).Return(nil, errors.New("upstream down"))
	fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)
	ledger.On("FetchRemainingLimits", mock.Anything, mock.Anything).
		Return(&models.LimitUsage{}, nil)

	s := newTestSession(t, rates, fees, ledger, gateway)
	s.Open(context.Background())
	waitLoaded(t, s)

	s.SetAmount(100)
	snap := s.Snapshot()
	assert.Empty(t, snap.Wallets)
	assert.True(t, snap.Calculation.Zero())
	assert.Equal(t, limits.AmountPlaceholder, snap.Payable)
}

func TestSessionCloseDiscardsLateResults(t *testing.T) {
	rates := new(MockRateSource)
	fees := new(MockFeeSource)
	ledger := new(MockLimitLedger)
	gateway := new(MockGateway)

	walletGate := make(chan time.Time)
	rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil).WaitUntil(walletGate)
	fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)

	s := NewSession(SessionDeps{Rates: rates, Fees: fees, Ledger: ledger, Gateway: gateway}, 1, testCard())
	s.Open(context.Background())
	s.Close()
	close(walletGate)

	assert.Never(t, func() bool {
		return len(s.Snapshot().Wallets) > 0
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestSessionSubmit(t *testing.T) {
	t.Run("success resets form and closes", func(t *testing.T) {
		rates := new(MockRateSource)
		fees := new(MockFeeSource)
		ledger := new(MockLimitLedger)
		gateway := new(MockGateway)

		rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
		fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)
		ledger.On("FetchRemainingLimits", mock.Anything, mock.Anything).
			Return(&models.LimitUsage{}, nil)
		gateway.On("SubmitDeposit", mock.Anything, uint(1), Payload{
			FundAmount:   100,
			CardID:       7,
			Currency:     "EUR",
			FromCurrency: "USD",
		}).Return(&models.Transaction{Reference: "ref-1"}, nil)

		s := newTestSession(t, rates, fees, ledger, gateway)
		s.Open(context.Background())
		waitLoaded(t, s)

		s.SetAmount(100)
		txn, err := s.Submit(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "ref-1", txn.Reference)
		gateway.AssertExpectations(t)

		_, err = s.Submit(context.Background())
		assert.ErrorIs(t, err, ErrSessionClosed)
	})

	t.Run("failure preserves form for retry", func(t *testing.T) {
		rates := new(MockRateSource)
		fees := new(MockFeeSource)
		ledger := new(MockLimitLedger)
		gateway := new(MockGateway)

		rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
		fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)
		ledger.On("FetchRemainingLimits", mock.Anything, mock.Anything).
			Return(&models.LimitUsage{}, nil)
		gateway.On("SubmitDeposit", mock.Anything, uint(1), mock.Anything).
			Return(nil, ErrInsufficientFunds)

		s := newTestSession(t, rates, fees, ledger, gateway)
		s.Open(context.Background())
		waitLoaded(t, s)

		s.SetAmount(100)
		_, err := s.Submit(context.Background())

		assert.ErrorIs(t, err, ErrInsufficientFunds)
		snap := s.Snapshot()
		assert.True(t, snap.AmountSet)
		assert.Equal(t, float64(100), snap.Amount)
	})

	t.Run("missing amount rejected", func(t *testing.T) {
		rates := new(MockRateSource)
		fees := new(MockFeeSource)
		ledger := new(MockLimitLedger)
		gateway := new(MockGateway)

		rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
		fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)
		ledger.On("FetchRemainingLimits", mock.Anything, mock.Anything).
			Return(&models.LimitUsage{}, nil)

		s := newTestSession(t, rates, fees, ledger, gateway)
		s.Open(context.Background())
		waitLoaded(t, s)

		_, err := s.Submit(context.Background())
		assert.ErrorIs(t, err, ErrAmountRequired)
		gateway.AssertNotCalled(t, "SubmitDeposit", mock.Anything, mock.Anything, mock.Anything)
	})
}
