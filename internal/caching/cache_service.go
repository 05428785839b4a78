package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"carrinex/internal/onboarding"
)

// ErrCacheMiss is returned when a key does not exist or has expired.
var ErrCacheMiss = errors.New("cache miss")

type CacheService interface {
	// Onboarding draft persistence
	GetWizard(ctx context.Context, userID uuid.UUID) (*onboarding.Wizard, error)
	SetWizard(ctx context.Context, wizard *onboarding.Wizard, ttl time.Duration) error
	DeleteWizard(ctx context.Context, userID uuid.UUID) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept both host:port and redis://host:port forms
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	}

	return &redisCacheService{client: client}
}

func wizardKey(userID uuid.UUID) string {
	return fmt.Sprintf("onboarding:draft:%s", userID)
}

func (s *redisCacheService) GetWizard(ctx context.Context, userID uuid.UUID) (*onboarding.Wizard, error) {
	data, err := s.client.Get(ctx, wizardKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var wizard onboarding.Wizard
	if err := json.Unmarshal(data, &wizard); err != nil {
		return nil, fmt.Errorf("corrupt onboarding draft for %s: %w", userID, err)
	}
	return &wizard, nil
}

func (s *redisCacheService) SetWizard(ctx context.Context, wizard *onboarding.Wizard, ttl time.Duration) error {
	data, err := json.Marshal(wizard)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, wizardKey(wizard.UserID), data, ttl).Err()
}

func (s *redisCacheService) DeleteWizard(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, wizardKey(userID)).Err()
}

func (s *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return value, err
}

func (s *redisCacheService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisCacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
