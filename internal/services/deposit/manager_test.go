package deposit

import (
	"testing"
	"time"

	"cardvault/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) (*Manager, *MockRateSource, *MockFeeSource, *MockLimitLedger) {
	rates := new(MockRateSource)
	fees := new(MockFeeSource)
	ledger := new(MockLimitLedger)
	gateway := new(MockGateway)

	rates.On("FetchWallets", mock.Anything, uint(1)).Return(testWallets(), nil)
	fees.On("FetchCardReloadCharge", mock.Anything).Return(testCharge(), nil)
	ledger.On("FetchRemainingLimits", mock.Anything, mock.Anything).
		Return(&models.LimitUsage{RemainingDaily: 1000, RemainingMonthly: 10000}, nil)

	return NewManager(SessionDeps{
		Rates:   rates,
		Fees:    fees,
		Ledger:  ledger,
		Gateway: gateway,
	}, ttl), rates, fees, ledger
}

func TestManagerOpenAndGet(t *testing.T) {
	m, _, _, _ := newTestManager(0)

	id, s := m.Open(1, testCard())
	require.NotEmpty(t, id)
	require.NotNil(t, s)
	defer s.Close()

	got, err := m.Get(id, 1)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestManagerGetEnforcesOwnership(t *testing.T) {
	m, _, _, _ := newTestManager(0)

	id, s := m.Open(1, testCard())
	defer s.Close()

	_, err := m.Get(id, 2)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerGetUnknownID(t *testing.T) {
	m, _, _, _ := newTestManager(0)

	_, err := m.Get("nope", 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerCloseRemovesSession(t *testing.T) {
	m, _, _, _ := newTestManager(0)

	id, s := m.Open(1, testCard())
	m.Close(id, 1)

	_, err := m.Get(id, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, s.closed())
}

func TestManagerCloseForeignSessionIsNoop(t *testing.T) {
	m, _, _, _ := newTestManager(0)

	id, s := m.Open(1, testCard())
	defer s.Close()

	m.Close(id, 2)

	got, err := m.Get(id, 1)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	m, _, _, _ := newTestManager(time.Millisecond)

	id, s := m.Open(1, testCard())

	assert.Eventually(t, func() bool {
		_, err := m.Get(id, 1)
		return err != nil
	}, time.Second, 5*time.Millisecond)
	assert.True(t, s.closed())
}
