package apperrors

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateUser возвращается, когда nickname или email уже заняты.
	// Клиентская ошибка: никаких изменений в хранилище не происходит
	ErrDuplicateUser = errors.New("пользователь с таким nickname или email уже существует")

	// ErrRegistrationFailed возвращается при любой непредвиденной ошибке
	// персистентности во время регистрации; транзакция откатывается целиком
	ErrRegistrationFailed = errors.New("ошибка при регистрации")

	// ErrNotFound возвращается, когда запись не найдена (обобщенная ошибка)
	ErrNotFound = errors.New("запись не найдена")

	// ErrCacheMiss возвращается, когда запись не найдена в кэше
	ErrCacheMiss = redis.Nil

	// ErrRecordNotFound возвращается, когда запись не найдена в базе данных
	ErrRecordNotFound = gorm.ErrRecordNotFound

	// IgnoredErrors содержит список ошибок, которые не должны открывать circuit breaker
	IgnoredErrors = []error{
		ErrNotFound,
		ErrCacheMiss,
		ErrRecordNotFound,
		ErrDuplicateUser,
	}
)

// IsNotFound проверяет, является ли ошибка ошибкой "запись не найдена"
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCacheMiss) ||
		errors.Is(err, ErrRecordNotFound)
}

// IsDuplicate проверяет, является ли ошибка конфликтом уникальности пользователя
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateUser)
}
