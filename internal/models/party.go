package models

import (
	"time"
)

// Party представляет вечеринку
type Party struct {
	ID         uint      `gorm:"primaryKey;column:id"`
	Name       string    `gorm:"not null"`
	Cost       float64   `gorm:"default:0"`
	Location   string    `gorm:"not null"`
	StartParty time.Time `gorm:"column:start_party;index"`
	CountSeats int       `gorm:"column:count_seats;default:0"`
}

// PartyResponse представляет вечеринку в списке:
// дата и время отдаются отдельными строками, как их ожидает фронтенд
type PartyResponse struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Cost       float64 `json:"cost"`
	Location   string  `json:"location"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	CountSeats int     `json:"count_seats"`
}

// TableName устанавливает имя таблицы для модели Party
func (Party) TableName() string {
	return "parties"
}
