package models

// User представляет основную модель пользователя
type User struct {
	ID            uint   `gorm:"primaryKey;column:id"`
	Nickname      string `gorm:"uniqueIndex;not null"`
	Surname       string `gorm:"not null"`
	Name          string `gorm:"not null"`
	Age           int    `gorm:"default:18"`
	IsVerificated bool   `gorm:"default:false"`
	IsBan         bool   `gorm:"default:false"`
	PhoneNumber   *string
	Mail          string `gorm:"uniqueIndex;not null"`

	// Реферальная идентичность: собственный код пользователя (refer) неизменяем
	// после выдачи, refer_from хранит код пригласившего в том виде, в котором
	// он был передан при регистрации
	Refer     string  `gorm:"uniqueIndex;not null"`
	ReferFrom *string `gorm:"column:refer_from"`

	Gender       int `gorm:"default:1"`
	InvitedCount int `gorm:"default:0"`

	// Счетчики для отображения: регистрация их не изменяет
	VisitsCount          int `gorm:"default:0"`
	TotalBarSpent        int `gorm:"default:0"`
	BattleParticipations int `gorm:"default:0"`
}

// Role представляет роль пользователя (например, "Участник")
type Role struct {
	ID   uint   `gorm:"primaryKey;column:id"`
	Name string `gorm:"uniqueIndex;not null"`
}

// UserRole связывает пользователя с ролью
type UserRole struct {
	ID     uint `gorm:"primaryKey;column:id"`
	IDUser uint `gorm:"column:id_user;index"`
	IDRole uint `gorm:"column:id_role;index"`
}

// RegisterUserRequest представляет запрос на регистрацию пользователя
type RegisterUserRequest struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	ReferFrom string `json:"refer_from,omitempty"`
}

// UserResponse представляет ответ с данными пользователя
type UserResponse struct {
	ID                   uint   `json:"id"`
	Name                 string `json:"name"`
	Surname              string `json:"surname"`
	Nickname             string `json:"nickname"`
	Email                string `json:"email"`
	Refer                string `json:"refer"`
	CurrentRank          string `json:"current_rank"`
	VisitsCount          int    `json:"visits_count"`
	InvitedCount         int    `json:"invited_count"`
	TotalBarSpent        int    `json:"total_bar_spent"`
	BattleParticipations int    `json:"battle_participations"`
}

// RegisterUserResponse представляет полный ответ на регистрацию
type RegisterUserResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// UserListItem представляет строку в списке пользователей:
// имя и фамилия объединяются в одно поле, ранг берется из связанной роли
type UserListItem struct {
	ID           uint   `json:"ID"`
	Nickname     string `json:"nickname"`
	Name         string `json:"name"`
	Mail         string `json:"mail"`
	Refer        string `json:"refer"`
	CurrentRank  string `json:"current_rank"`
	InvitedCount int    `json:"invited_count"`
}

// TableName устанавливает имя таблицы для модели User
func (User) TableName() string {
	return "users"
}

// TableName устанавливает имя таблицы для модели Role
func (Role) TableName() string {
	return "roles"
}

// TableName устанавливает имя таблицы для модели UserRole
func (UserRole) TableName() string {
	return "user_role"
}
