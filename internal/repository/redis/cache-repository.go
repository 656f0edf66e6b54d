package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"NeedForPartyService/internal/models"
	"NeedForPartyService/pkg/apperrors"
	"NeedForPartyService/pkg/resilience"
	"NeedForPartyService/pkg/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// TTL для разных типов кэша
	userProfileTTL = 30 * time.Minute
	partyListTTL   = 5 * time.Minute
)

// CacheRepository представляет репозиторий для работы с кэшем в Redis.
// Все операции проходят через circuit breaker: деградация кэша не должна
// выводить из строя основной поток запросов
type CacheRepository struct {
	client  *redis.Client
	circuit *resilience.CircuitBreaker
}

// NewCacheRepository создает новый экземпляр CacheRepository
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	failureThreshold, resetTimeout := resilience.DefaultCircuitBreakerOptions()

	return &CacheRepository{
		client:  client,
		circuit: resilience.NewCircuitBreaker("redis_cache", failureThreshold, resetTimeout, logger, apperrors.IgnoredErrors...),
	}
}

// SetUserProfile кэширует профиль пользователя по nickname
func (r *CacheRepository) SetUserProfile(ctx context.Context, profile *models.UserResponse) error {
	key := fmt.Sprintf("user:%s:profile", profile.Nickname)

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	return r.execute(ctx, "set_user_profile", func(ctx context.Context) error {
		return r.client.Set(ctx, key, data, userProfileTTL).Err()
	})
}

// GetUserProfile получает профиль пользователя из кэша
func (r *CacheRepository) GetUserProfile(ctx context.Context, nickname string) (*models.UserResponse, error) {
	key := fmt.Sprintf("user:%s:profile", nickname)

	var data []byte
	err := r.execute(ctx, "get_user_profile", func(ctx context.Context) error {
		var getErr error
		data, getErr = r.client.Get(ctx, key).Bytes()
		return getErr
	})
	if err != nil {
		return nil, err
	}

	var profile models.UserResponse
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// DeleteUserProfile удаляет профиль пользователя из кэша
func (r *CacheRepository) DeleteUserProfile(ctx context.Context, nickname string) error {
	key := fmt.Sprintf("user:%s:profile", nickname)

	return r.execute(ctx, "delete_user_profile", func(ctx context.Context) error {
		return r.client.Del(ctx, key).Err()
	})
}

// SetPartyList кэширует список вечеринок
func (r *CacheRepository) SetPartyList(ctx context.Context, upcoming bool, parties []models.PartyResponse) error {
	data, err := json.Marshal(parties)
	if err != nil {
		return err
	}

	key := partyListKey(upcoming)
	return r.execute(ctx, "set_party_list", func(ctx context.Context) error {
		return r.client.Set(ctx, key, data, partyListTTL).Err()
	})
}

// GetPartyList получает список вечеринок из кэша
func (r *CacheRepository) GetPartyList(ctx context.Context, upcoming bool) ([]models.PartyResponse, error) {
	key := partyListKey(upcoming)

	var data []byte
	err := r.execute(ctx, "get_party_list", func(ctx context.Context) error {
		var getErr error
		data, getErr = r.client.Get(ctx, key).Bytes()
		return getErr
	})
	if err != nil {
		return nil, err
	}

	var parties []models.PartyResponse
	if err := json.Unmarshal(data, &parties); err != nil {
		return nil, err
	}

	return parties, nil
}

// execute выполняет операцию кэша через circuit breaker с записью метрик
func (r *CacheRepository) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	startTime := time.Now()
	err := r.circuit.Execute(ctx, operation, fn)
	server.RecordCacheOperation(operation, time.Since(startTime), err)
	return err
}

// partyListKey возвращает ключ кэша для варианта списка вечеринок
func partyListKey(upcoming bool) string {
	if upcoming {
		return "parties:upcoming"
	}
	return "parties:all"
}
