package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cardvault/internal/models"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Wallet caching. The deposit flow reads the wallet list on every modal
// open, so the full list is cached per user and invalidated on any
// balance change.
func (s *CacheService) CacheWallets(ctx context.Context, userID uint, wallets []models.Wallet) error {
	return s.SetWithTTL(ctx, s.GenerateKey("wallets", "user", userID), wallets, 5*time.Minute)
}

func (s *CacheService) GetWallets(ctx context.Context, userID uint) ([]models.Wallet, error) {
	var wallets []models.Wallet
	found, err := s.Get(ctx, s.GenerateKey("wallets", "user", userID), &wallets)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCacheMiss
	}
	return wallets, nil
}

func (s *CacheService) InvalidateWallets(ctx context.Context, userID uint) error {
	return s.Delete(ctx, s.GenerateKey("wallets", "user", userID))
}

// Fee schedule caching. The active reload charge changes rarely and is
// consulted on every quote.
func (s *CacheService) CacheCardCharge(ctx context.Context, charge *models.CardCharge) error {
	if charge == nil {
		return errors.New("cannot cache nil card charge")
	}
	return s.SetWithTTL(ctx, s.GenerateKey("charge", "slug", charge.Slug), charge, 10*time.Minute)
}

func (s *CacheService) GetCardCharge(ctx context.Context, slug string) (*models.CardCharge, error) {
	var charge models.CardCharge
	found, err := s.Get(ctx, s.GenerateKey("charge", "slug", slug), &charge)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCacheMiss
	}
	return &charge, nil
}

func (s *CacheService) InvalidateCardCharge(ctx context.Context, slug string) error {
	return s.Delete(ctx, s.GenerateKey("charge", "slug", slug))
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
