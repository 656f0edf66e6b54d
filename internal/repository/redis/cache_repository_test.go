package redis

import (
	"context"
	"testing"

	"NeedForPartyService/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// setupTestRedis создает мини-Redis сервер для тестирования
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create mini redis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, func() {
		client.Close()
		mr.Close()
	}
}

// TestSetAndGetUserProfile тестирует методы SetUserProfile и GetUserProfile
func TestSetAndGetUserProfile(t *testing.T) {
	// Настраиваем тестовый Redis
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	// Создаем репозиторий
	repo := NewCacheRepository(client, zap.NewNop())

	ctx := context.Background()

	profile := &models.UserResponse{
		ID:           1,
		Name:         "Иван",
		Surname:      "Петров",
		Nickname:     "ivan_petrov",
		Email:        "ivan@example.com",
		Refer:        "02012024030405IV",
		CurrentRank:  "Участник",
		InvitedCount: 2,
	}

	// Сохраняем профиль в кэше
	if err := repo.SetUserProfile(ctx, profile); err != nil {
		t.Fatalf("Failed to set user profile in cache: %v", err)
	}

	// Получаем профиль из кэша
	cached, err := repo.GetUserProfile(ctx, profile.Nickname)
	if err != nil {
		t.Fatalf("Failed to get user profile from cache: %v", err)
	}

	// Проверяем, что данные соответствуют
	if cached.ID != profile.ID {
		t.Errorf("Expected user ID %d, got %d", profile.ID, cached.ID)
	}
	if cached.Nickname != profile.Nickname {
		t.Errorf("Expected Nickname %s, got %s", profile.Nickname, cached.Nickname)
	}
	if cached.Refer != profile.Refer {
		t.Errorf("Expected Refer %s, got %s", profile.Refer, cached.Refer)
	}
	if cached.InvitedCount != profile.InvitedCount {
		t.Errorf("Expected InvitedCount %d, got %d", profile.InvitedCount, cached.InvitedCount)
	}
}

// TestGetUserProfileMiss тестирует промах кэша
func TestGetUserProfileMiss(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	repo := NewCacheRepository(client, zap.NewNop())

	_, err := repo.GetUserProfile(context.Background(), "ghost")
	if err == nil {
		t.Fatalf("Expected error on cache miss, got nil")
	}
}

// TestDeleteUserProfile тестирует метод DeleteUserProfile
func TestDeleteUserProfile(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	repo := NewCacheRepository(client, zap.NewNop())

	ctx := context.Background()

	profile := &models.UserResponse{
		ID:       1,
		Nickname: "ivan_petrov",
	}

	if err := repo.SetUserProfile(ctx, profile); err != nil {
		t.Fatalf("Failed to set user profile in cache: %v", err)
	}

	if err := repo.DeleteUserProfile(ctx, profile.Nickname); err != nil {
		t.Fatalf("Failed to delete user profile from cache: %v", err)
	}

	// Пытаемся получить удаленный профиль
	_, err := repo.GetUserProfile(ctx, profile.Nickname)
	if err == nil {
		t.Fatalf("Expected error when getting deleted profile, got nil")
	}
}

// TestSetAndGetPartyList тестирует кэширование списков вечеринок
func TestSetAndGetPartyList(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	repo := NewCacheRepository(client, zap.NewNop())

	ctx := context.Background()

	parties := []models.PartyResponse{
		{
			ID:         1,
			Name:       "Новогодняя ночь 🎄",
			Cost:       2500.00,
			Location:   "Клуб 'Ледниковый'",
			Date:       "31.12.2024",
			Time:       "22:00:00",
			CountSeats: 200,
		},
	}

	// Кэшируем список предстоящих вечеринок
	if err := repo.SetPartyList(ctx, true, parties); err != nil {
		t.Fatalf("Failed to set party list in cache: %v", err)
	}

	cached, err := repo.GetPartyList(ctx, true)
	if err != nil {
		t.Fatalf("Failed to get party list from cache: %v", err)
	}

	if len(cached) != 1 {
		t.Fatalf("Expected 1 party, got %d", len(cached))
	}
	if cached[0].Name != parties[0].Name {
		t.Errorf("Expected party name %s, got %s", parties[0].Name, cached[0].Name)
	}

	// Варианты списков кэшируются под разными ключами
	if _, err := repo.GetPartyList(ctx, false); err == nil {
		t.Fatalf("Expected miss for full party list, got nil error")
	}
}
