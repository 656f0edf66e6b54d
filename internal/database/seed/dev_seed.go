package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"NeedForPartyService/internal/models"
	"NeedForPartyService/internal/repository/postgres"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DevEnvironmentSeeder обрабатывает заполнение тестовыми данными среды разработки
type DevEnvironmentSeeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDevEnvironmentSeeder создает новый объект для заполнения тестовыми данными
func NewDevEnvironmentSeeder(db *gorm.DB, logger *zap.Logger) *DevEnvironmentSeeder {
	return &DevEnvironmentSeeder{
		db:     db,
		logger: logger,
	}
}

// EnsureParticipantRole создает базовую роль, если ее еще нет.
// Выполняется в любом окружении: без нее шаг назначения роли при
// регистрации всегда пропускается
func (s *DevEnvironmentSeeder) EnsureParticipantRole() error {
	var role models.Role
	err := s.db.Where("name = ?", postgres.ParticipantRoleName).
		FirstOrCreate(&role, models.Role{Name: postgres.ParticipantRoleName}).Error
	if err != nil {
		s.logger.Error("Не удалось создать базовую роль", zap.Error(err))
		return fmt.Errorf("не удалось создать базовую роль: %w", err)
	}

	s.logger.Debug("Базовая роль доступна", zap.Uint("role_id", role.ID))
	return nil
}

// SeedDemoParties создает демонстрационные вечеринки, если мы находимся в режиме разработки
func (s *DevEnvironmentSeeder) SeedDemoParties() error {
	// Проверяем, находимся ли мы в режиме разработки
	if os.Getenv("APP_ENV") != "development" {
		s.logger.Debug("Не в режиме разработки, пропускаем создание демонстрационных вечеринок")
		return nil
	}

	s.logger.Info("Заполнение демонстрационными вечеринками для среды разработки")

	var count int64
	if err := s.db.Model(&models.Party{}).Count(&count).Error; err != nil {
		return fmt.Errorf("не удалось проверить таблицу вечеринок: %w", err)
	}
	if count > 0 {
		s.logger.Info("Вечеринки уже существуют, пропускаем заполнение", zap.Int64("count", count))
		return nil
	}

	now := time.Now()
	parties := []models.Party{
		{
			Name:       "Новогодняя ночь 🎄",
			Cost:       2500.00,
			Location:   "Клуб 'Ледниковый'",
			StartParty: now.AddDate(0, 1, 0),
			CountSeats: 200,
		},
		{
			Name:       "Вечер настольных игр 🎲",
			Cost:       500.00,
			Location:   "Антикафе 'Компас'",
			StartParty: now.AddDate(0, 0, 7),
			CountSeats: 40,
		},
		{
			Name:       "Ретро-дискотека 💿",
			Cost:       1200.00,
			Location:   "Бар 'Полночь'",
			StartParty: now.AddDate(0, 0, 14),
			CountSeats: 120,
		},
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, party := range parties {
			if err := tx.Create(&party).Error; err != nil {
				return fmt.Errorf("не удалось создать демонстрационную вечеринку %q: %w", party.Name, err)
			}
		}
		return nil
	})

	if err != nil {
		s.logger.Error("Не удалось заполнить демонстрационными вечеринками", zap.Error(err))
		return err
	}

	s.logger.Info("Демонстрационные вечеринки созданы", zap.Int("count", len(parties)))
	return nil
}

// SeedAllDevData заполняет все данные для разработки
func (s *DevEnvironmentSeeder) SeedAllDevData(ctx context.Context) error {
	if err := s.EnsureParticipantRole(); err != nil {
		return err
	}
	return s.SeedDemoParties()
}
