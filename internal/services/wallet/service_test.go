package wallet

import (
	"context"
	"testing"

	"cardvault/internal/models"
	"cardvault/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) Create(wallet *models.Wallet) error {
	return m.Called(wallet).Error(0)
}

func (m *MockWalletRepo) GetByID(ctx context.Context, id uint) (*models.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepo) GetByUserAndCurrency(ctx context.Context, userID uint, currencyCode string) (*models.Wallet, error) {
	args := m.Called(ctx, userID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepo) ListByUserID(ctx context.Context, userID uint) ([]models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Wallet), args.Error(1)
}

func (m *MockWalletRepo) Update(wallet *models.Wallet) error {
	return m.Called(wallet).Error(0)
}

func (m *MockWalletRepo) GetForUpdate(tx *gorm.DB, userID uint, currencyCode string) (*models.Wallet, error) {
	args := m.Called(tx, userID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

type MockCurrencyRepo struct {
	mock.Mock
}

func (m *MockCurrencyRepo) GetByCode(ctx context.Context, code string) (*models.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Currency), args.Error(1)
}

func (m *MockCurrencyRepo) List(ctx context.Context) ([]models.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Currency), args.Error(1)
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Charge(ctx context.Context, token, currencyCode string, amount float64) (string, error) {
	args := m.Called(ctx, token, currencyCode, amount)
	return args.String(0), args.Error(1)
}

func TestListWallets(t *testing.T) {
	repo := new(MockWalletRepo)
	currencies := new(MockCurrencyRepo)

	wallets := []models.Wallet{
		{ID: 1, UserID: 1, CurrencyCode: "USD", Balance: 100,
			Currency: models.Currency{Code: "USD", Rate: 1.0}},
		{ID: 2, UserID: 1, CurrencyCode: "EUR", Balance: 50,
			Currency: models.Currency{Code: "EUR", Rate: 0.9}},
	}
	repo.On("ListByUserID", mock.Anything, uint(1)).Return(wallets, nil)

	svc := NewService(nil, repo, currencies, nil, nil, nil, Config{}, nil)
	got, err := svc.ListWallets(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].Currency.Rate)
	repo.AssertExpectations(t)
}

func TestTopUp(t *testing.T) {
	tests := []struct {
		name      string
		input     TopUpInput
		setupMock func(*MockWalletRepo, *MockProcessor)
		wantErr   error
	}{
		{
			name:    "amount below minimum",
			input:   TopUpInput{CurrencyCode: "USD", Amount: 0.5, Token: "tok_visa"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:  "wallet missing",
			input: TopUpInput{CurrencyCode: "JPY", Amount: 100, Token: "tok_visa"},
			setupMock: func(repo *MockWalletRepo, proc *MockProcessor) {
				repo.On("GetByUserAndCurrency", mock.Anything, uint(1), "JPY").
					Return(nil, repositories.ErrWalletNotFound)
			},
			wantErr: ErrWalletNotFound,
		},
		{
			name:  "locked wallet",
			input: TopUpInput{CurrencyCode: "USD", Amount: 100, Token: "tok_visa"},
			setupMock: func(repo *MockWalletRepo, proc *MockProcessor) {
				repo.On("GetByUserAndCurrency", mock.Anything, uint(1), "USD").
					Return(&models.Wallet{UserID: 1, CurrencyCode: "USD", Status: "locked"}, nil)
			},
			wantErr: ErrWalletLocked,
		},
		{
			name:  "declined charge leaves wallet untouched",
			input: TopUpInput{CurrencyCode: "USD", Amount: 100, Token: "tok_chargeDeclined"},
			setupMock: func(repo *MockWalletRepo, proc *MockProcessor) {
				repo.On("GetByUserAndCurrency", mock.Anything, uint(1), "USD").
					Return(&models.Wallet{UserID: 1, CurrencyCode: "USD", Status: "active"}, nil)
				proc.On("Charge", mock.Anything, "tok_chargeDeclined", "USD", 100.0).
					Return("", assert.AnError)
			},
			wantErr: ErrPaymentDeclined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockWalletRepo)
			proc := new(MockProcessor)
			currencies := new(MockCurrencyRepo)

			if tt.setupMock != nil {
				tt.setupMock(repo, proc)
			}

			svc := NewService(nil, repo, currencies, nil, nil, proc, Config{}, nil)
			_, err := svc.TopUp(context.Background(), 1, tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertExpectations(t)
			proc.AssertExpectations(t)
		})
	}
}

func TestCreateWalletRejectsUnknownCurrency(t *testing.T) {
	repo := new(MockWalletRepo)
	currencies := new(MockCurrencyRepo)

	currencies.On("GetByCode", mock.Anything, "XXX").Return(nil, repositories.ErrCurrencyNotFound)

	svc := NewService(nil, repo, currencies, nil, nil, nil, Config{}, nil)
	_, err := svc.CreateWallet(context.Background(), 1, "XXX")

	assert.ErrorIs(t, err, ErrInvalidCurrency)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}
