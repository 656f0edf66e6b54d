package postgres

import (
	"time"

	"NeedForPartyService/internal/models"
	"NeedForPartyService/pkg/server"

	"gorm.io/gorm"
)

// PartyRepository представляет репозиторий для работы с вечеринками
type PartyRepository struct {
	db *gorm.DB
}

// NewPartyRepository создает новый экземпляр PartyRepository
func NewPartyRepository(db *gorm.DB) *PartyRepository {
	return &PartyRepository{
		db: db,
	}
}

// List возвращает вечеринки: либо только предстоящие по возрастанию даты,
// либо все по убыванию
func (r *PartyRepository) List(upcoming bool) ([]models.Party, error) {
	startTime := time.Now()

	var parties []models.Party
	query := r.db.Model(&models.Party{})

	if upcoming {
		query = query.Where("start_party > ?", time.Now()).Order("start_party ASC")
	} else {
		query = query.Order("start_party DESC")
	}

	err := query.Find(&parties).Error
	server.RecordDBOperation("list_parties", time.Since(startTime), err)

	if err != nil {
		return nil, err
	}

	return parties, nil
}
