package auth

import (
	"context"
	"errors"

	"cardvault/internal/models"
	"cardvault/internal/repositories"
	"cardvault/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, string, error)
	RefreshTokens(refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uint) error
}

type service struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

func NewService(userRepo repositories.UserRepository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{userRepo: userRepo, logger: logger}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Email == "" || input.Name == "" || len(input.Password) < 8 {
		return nil, errors.New("name, email and a password of at least 8 characters are required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hash),
		Role:     "user",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Debug("login failed: user not found", zap.String("email", email))
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Debug("login failed: wrong password", zap.Uint("user_id", user.ID))
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
	if err != nil {
		s.logger.Error("failed to generate tokens", zap.Error(err))
		return nil, "", "", errors.New("error generating tokens")
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(context.Background(), claims.UserID)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	// A refresh token minted before the last logout carries a stale
	// version and is rejected.
	if claims.TokenVersion != user.TokenVersion {
		return "", "", ErrInvalidCredentials
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.TokenVersion++
	return s.userRepo.Update(user)
}
