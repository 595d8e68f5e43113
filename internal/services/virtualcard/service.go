// Package virtualcard manages prepaid virtual card issuance and lookup.
package virtualcard

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"cardvault/internal/models"
	"cardvault/internal/repositories"

	"go.uber.org/zap"
)

var (
	ErrCardNotFound = errors.New("card not found")
	ErrCardNotOwned = errors.New("card does not belong to user")
	ErrInvalidInput = errors.New("invalid card input")
	ErrBadCurrency  = errors.New("unsupported card currency")
	ErrCardInactive = errors.New("card is not active")
)

const cardNumberDigits = 16

type Service interface {
	Issue(ctx context.Context, userID uint, input models.IssueCardInput) (*models.VirtualCard, error)
	Get(ctx context.Context, userID, cardID uint) (*models.VirtualCard, error)
	List(ctx context.Context, userID uint) ([]models.VirtualCard, error)
	Transactions(ctx context.Context, userID, cardID uint, limit, offset int) ([]models.Transaction, error)
}

type service struct {
	repo       repositories.VirtualCardRepository
	currencies repositories.CurrencyRepository
	txns       repositories.TransactionRepository
	logger     *zap.Logger
}

func NewService(
	repo repositories.VirtualCardRepository,
	currencies repositories.CurrencyRepository,
	txns repositories.TransactionRepository,
	logger *zap.Logger,
) Service {
	if repo == nil {
		panic("card repository is required")
	}
	if currencies == nil {
		panic("currency repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{repo: repo, currencies: currencies, txns: txns, logger: logger}
}

func (s *service) Issue(ctx context.Context, userID uint, input models.IssueCardInput) (*models.VirtualCard, error) {
	if input.CardHolder == "" || input.CurrencyCode == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.currencies.GetByCode(ctx, input.CurrencyCode); err != nil {
		return nil, ErrBadCurrency
	}

	number, err := generateCardNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to generate card number: %w", err)
	}

	expiry := time.Now().AddDate(3, 0, 0)
	card := &models.VirtualCard{
		UserID:       userID,
		CardNumber:   number,
		LastFour:     number[len(number)-4:],
		CardHolder:   input.CardHolder,
		ExpiryMonth:  fmt.Sprintf("%02d", int(expiry.Month())),
		ExpiryYear:   fmt.Sprintf("%d", expiry.Year()),
		CurrencyCode: input.CurrencyCode,
		Status:       models.CardStatusActive,
	}
	if err := s.repo.Create(card); err != nil {
		return nil, fmt.Errorf("failed to issue card: %w", err)
	}

	s.logger.Info("virtual card issued",
		zap.Uint("user_id", userID),
		zap.Uint("card_id", card.ID),
		zap.String("currency", card.CurrencyCode),
	)
	return card, nil
}

func (s *service) Get(ctx context.Context, userID, cardID uint) (*models.VirtualCard, error) {
	card, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		if err == repositories.ErrCardNotFound {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if card.UserID != userID {
		return nil, ErrCardNotOwned
	}
	return card, nil
}

func (s *service) List(ctx context.Context, userID uint) ([]models.VirtualCard, error) {
	cards, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (s *service) Transactions(ctx context.Context, userID, cardID uint, limit, offset int) ([]models.Transaction, error) {
	if _, err := s.Get(ctx, userID, cardID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.txns.ListByCardID(ctx, cardID, limit, offset)
}

// generateCardNumber produces a Luhn-valid 16 digit card number.
func generateCardNumber() (string, error) {
	digits := make([]byte, cardNumberDigits)
	digits[0] = '4'
	for i := 1; i < cardNumberDigits-1; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	digits[cardNumberDigits-1] = '0' + luhnCheckDigit(digits[:cardNumberDigits-1])
	return string(digits), nil
}

func luhnCheckDigit(digits []byte) byte {
	var sum int
	shouldDouble := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if shouldDouble {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		shouldDouble = !shouldDouble
	}
	return byte((10 - sum%10) % 10)
}
