package postgres

import (
	"errors"
	"strings"
	"time"

	"NeedForPartyService/internal/models"
	"NeedForPartyService/pkg/apperrors"
	"NeedForPartyService/pkg/server"

	"gorm.io/gorm"
)

// ParticipantRoleName содержит имя роли, назначаемой новым пользователям
const ParticipantRoleName = "Участник"

// RoleLinkStatus представляет исход назначения роли
type RoleLinkStatus int

const (
	// RoleLinkOk означает, что роль найдена и связана с пользователем
	RoleLinkOk RoleLinkStatus = iota
	// RoleLinkSkipped означает, что роли нет в хранилище и назначать нечего
	RoleLinkSkipped
	// RoleLinkWarning означает, что назначение не удалось; регистрация при этом не откатывается
	RoleLinkWarning
)

// RoleLinkResult содержит исход назначения роли и ошибку для журнала
type RoleLinkResult struct {
	Status RoleLinkStatus
	Err    error
}

// UserRepository представляет репозиторий для работы с пользователями
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Register выполняет регистрацию пользователя как одну транзакцию:
// проверку уникальности, разрешение реферального кода, вставку записи и
// начисление реферального кредита. Либо фиксируются все шаги, либо ни один.
//
// Назначение роли "Участник" выполняется отдельным запросом после фиксации:
// внутри транзакции PostgreSQL неудавшийся оператор отравляет всю транзакцию,
// поэтому необязательный шаг не может разделять ее с обязательными
func (r *UserRepository) Register(user *models.User, referFromCode string) (RoleLinkResult, error) {
	startTime := time.Now()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Проверяем, заняты ли nickname или email
		var existing models.User
		result := tx.Where("nickname = ? OR mail = ?", user.Nickname, user.Mail).First(&existing)
		if result.Error == nil {
			return apperrors.ErrDuplicateUser
		} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		// Разрешаем реферальный код, если он указан.
		// Неизвестный код не считается ошибкой: регистрация продолжается
		// без начисления кредита
		var referrerID uint
		code := strings.TrimSpace(referFromCode)
		if code != "" {
			var referrer models.User
			result := tx.Where("refer = ?", code).First(&referrer)
			switch {
			case result.Error == nil:
				referrerID = referrer.ID
				user.ReferFrom = &code
			case errors.Is(result.Error, gorm.ErrRecordNotFound):
				// Кредит не начисляется
			default:
				return result.Error
			}
		}

		// Вставляем пользователя; gorm заполняет сгенерированный ID
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		// Начисляем кредит пригласившему одним атомарным обновлением,
		// чтобы конкурентные регистрации не теряли инкременты
		if referrerID != 0 {
			if err := tx.Model(&models.User{}).
				Where("id = ?", referrerID).
				UpdateColumn("invited_count", gorm.Expr("COALESCE(invited_count, 0) + 1")).Error; err != nil {
				return err
			}
		}

		return nil
	})

	server.RecordDBOperation("register_user", time.Since(startTime), err)

	if err != nil {
		return RoleLinkResult{Status: RoleLinkSkipped}, err
	}

	return r.linkParticipantRole(user.ID), nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByNickname получает пользователя по nickname
func (r *UserRepository) GetByNickname(nickname string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("nickname = ?", nickname).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByReferCode получает пользователя по его реферальному коду
func (r *UserRepository) GetByReferCode(code string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("refer = ?", strings.TrimSpace(code)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// userListRow представляет промежуточную строку выборки списка пользователей
type userListRow struct {
	ID           uint
	Nickname     string
	Name         string
	Surname      string
	Mail         string
	Refer        string
	CurrentRank  *string
	InvitedCount int
}

// List возвращает страницу пользователей с рангом из связанной роли,
// новые записи первыми
func (r *UserRepository) List(limit, offset int) ([]models.UserListItem, error) {
	startTime := time.Now()

	var rows []userListRow
	err := r.db.Table("users").
		Select("users.id AS id, users.nickname, users.name, users.surname, users.mail, users.refer, "+
			"roles.name AS current_rank, COALESCE(users.invited_count, 0) AS invited_count").
		Joins("LEFT JOIN user_role ON users.id = user_role.id_user").
		Joins("LEFT JOIN roles ON user_role.id_role = roles.id").
		Order("users.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error

	server.RecordDBOperation("list_users", time.Since(startTime), err)

	if err != nil {
		return nil, err
	}

	items := make([]models.UserListItem, 0, len(rows))
	for _, row := range rows {
		rank := ""
		if row.CurrentRank != nil {
			rank = *row.CurrentRank
		}

		items = append(items, models.UserListItem{
			ID:           row.ID,
			Nickname:     row.Nickname,
			Name:         row.Name + " " + row.Surname,
			Mail:         row.Mail,
			Refer:        row.Refer,
			CurrentRank:  rank,
			InvitedCount: row.InvitedCount,
		})
	}

	return items, nil
}

// linkParticipantRole связывает нового пользователя с ролью "Участник".
// Шаг необязательный: отсутствие роли или сбой записи не отменяют регистрацию
func (r *UserRepository) linkParticipantRole(userID uint) RoleLinkResult {
	var role models.Role
	result := r.db.Where("name = ?", ParticipantRoleName).First(&role)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return RoleLinkResult{Status: RoleLinkSkipped}
	}
	if result.Error != nil {
		return RoleLinkResult{Status: RoleLinkWarning, Err: result.Error}
	}

	link := models.UserRole{
		IDUser: userID,
		IDRole: role.ID,
	}
	if err := r.db.Create(&link).Error; err != nil {
		return RoleLinkResult{Status: RoleLinkWarning, Err: err}
	}

	return RoleLinkResult{Status: RoleLinkOk}
}
