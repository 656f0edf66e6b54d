package service

import (
	"context"

	"NeedForPartyService/internal/models"
	"NeedForPartyService/pkg/server"

	"go.uber.org/zap"
)

// Форматы даты и времени, которые ожидает фронтенд мини-приложения
const (
	partyDateLayout = "02.01.2006"
	partyTimeLayout = "15:04:05"
)

// PartyRepositoryInterface описывает интерфейс для работы с репозиторием вечеринок
type PartyRepositoryInterface interface {
	List(upcoming bool) ([]models.Party, error)
}

// PartyService представляет сервис для работы с вечеринками
type PartyService struct {
	partyRepo PartyRepositoryInterface
	cacheRepo CacheRepositoryInterface
	logger    *zap.Logger
}

// NewPartyService создает новый экземпляр PartyService
func NewPartyService(partyRepo PartyRepositoryInterface, cacheRepo CacheRepositoryInterface, logger *zap.Logger) *PartyService {
	return &PartyService{
		partyRepo: partyRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
	}
}

// ListParties возвращает список вечеринок. При недоступности хранилища
// отдается фиксированный демонстрационный список, чтобы фронтенд не ломался
func (s *PartyService) ListParties(ctx context.Context, upcoming bool) ([]models.PartyResponse, error) {
	log := server.WithRequestID(ctx, s.logger)

	// Сначала пытаемся получить список из кэша
	cached, err := s.cacheRepo.GetPartyList(ctx, upcoming)
	if err == nil {
		log.Debug("Party list retrieved from cache", zap.Bool("upcoming", upcoming))
		return cached, nil
	}

	parties, err := s.partyRepo.List(upcoming)
	if err != nil {
		log.Error("Failed to list parties, serving fallback data", zap.Error(err))
		return fallbackParties(), nil
	}

	responses := make([]models.PartyResponse, 0, len(parties))
	for _, party := range parties {
		responses = append(responses, models.PartyResponse{
			ID:         party.ID,
			Name:       party.Name,
			Cost:       party.Cost,
			Location:   party.Location,
			Date:       party.StartParty.Format(partyDateLayout),
			Time:       party.StartParty.Format(partyTimeLayout),
			CountSeats: party.CountSeats,
		})
	}

	if err := s.cacheRepo.SetPartyList(ctx, upcoming, responses); err != nil {
		log.Warn("Failed to cache party list", zap.Error(err), zap.Bool("upcoming", upcoming))
	}

	return responses, nil
}

// fallbackParties возвращает демонстрационные данные на случай недоступности базы
func fallbackParties() []models.PartyResponse {
	return []models.PartyResponse{
		{
			ID:         1,
			Name:       "Новогодняя ночь 🎄",
			Cost:       2500.00,
			Location:   "Клуб 'Ледниковый'",
			Date:       "31.12.2023",
			Time:       "22:00:00",
			CountSeats: 200,
		},
	}
}
