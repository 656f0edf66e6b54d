package postgres

import (
	"log"
	"os"
	"regexp"
	"testing"
	"time"

	"NeedForPartyService/internal/models"
	"NeedForPartyService/pkg/apperrors"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB создает мок базы данных для тестов
func setupTestDB() (*gorm.DB, sqlmock.Sqlmock, error) {
	// Создаем мок SQL-соединения
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}

	// Создаем логгер для GORM
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent, // Тихий режим для тестов
			Colorful:      false,
		},
	)

	// Подключаем GORM к моку базы данных
	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, nil, err
	}

	return db, mock, nil
}

// userColumns перечисляет колонки таблицы users для строк мока
var userColumns = []string{
	"id", "nickname", "surname", "name", "age", "is_verificated", "is_ban",
	"phone_number", "mail", "refer", "refer_from", "gender", "invited_count",
	"visits_count", "total_bar_spent", "battle_participations",
}

// TestRegisterUser тестирует регистрацию без реферального кода
func TestRegisterUser(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewUserRepository(db)

	user := &models.User{
		Nickname: "ivan_petrov",
		Surname:  "Петров",
		Name:     "Иван",
		Age:      18,
		Mail:     "ivan@example.com",
		Refer:    "02012024030405IV",
		Gender:   1,
	}

	mock.ExpectBegin() // Ожидаем начало транзакции

	// Проверка занятости nickname и email (пустой результат - свободно)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE nickname = \$1 OR mail = \$2`).
		WithArgs(user.Nickname, user.Mail, 1).
		WillReturnRows(sqlmock.NewRows(userColumns))

	// Ожидаем вставку пользователя
	mock.ExpectQuery(`INSERT INTO "users" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	mock.ExpectCommit() // Ожидаем коммит транзакции

	// Назначение роли после фиксации: роль существует
	mock.ExpectQuery(`SELECT \* FROM "roles" WHERE name = \$1`).
		WithArgs(ParticipantRoleName, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, ParticipantRoleName))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "user_role"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Выполняем тестируемый метод
	roleResult, err := repo.Register(user, "")
	if err != nil {
		t.Fatalf("Failed to register user: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}

	// Проверяем, что ID был установлен
	if user.ID != 1 {
		t.Errorf("Expected user ID to be set to 1, got %d", user.ID)
	}

	// Без кода поле refer_from остается пустым
	if user.ReferFrom != nil {
		t.Errorf("Expected ReferFrom to stay nil, got %q", *user.ReferFrom)
	}

	if roleResult.Status != RoleLinkOk {
		t.Errorf("Expected role link status Ok, got %v", roleResult.Status)
	}
}

// TestRegisterUserWithReferral тестирует начисление кредита пригласившему
func TestRegisterUserWithReferral(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewUserRepository(db)

	referCode := "01012024100000AN"
	user := &models.User{
		Nickname: "maria_k",
		Surname:  "Кузнецова",
		Name:     "Мария",
		Age:      18,
		Mail:     "maria@example.com",
		Refer:    "02012024030405MA",
		Gender:   1,
	}

	mock.ExpectBegin()

	// Проверка занятости nickname и email
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE nickname = \$1 OR mail = \$2`).
		WithArgs(user.Nickname, user.Mail, 1).
		WillReturnRows(sqlmock.NewRows(userColumns))

	// Поиск пригласившего по коду
	referrerRows := sqlmock.NewRows([]string{"id", "nickname", "refer"}).
		AddRow(42, "anna", referCode)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE refer = \$1`).
		WithArgs(referCode, 1).
		WillReturnRows(referrerRows)

	// Вставка нового пользователя
	mock.ExpectQuery(`INSERT INTO "users" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	// Атомарное начисление кредита пригласившему
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "invited_count"=COALESCE(invited_count, 0) + 1 WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	// Роли нет - шаг пропускается
	mock.ExpectQuery(`SELECT \* FROM "roles" WHERE name = \$1`).
		WithArgs(ParticipantRoleName, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	roleResult, err := repo.Register(user, " "+referCode+" ")
	if err != nil {
		t.Fatalf("Failed to register user with referral: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}

	// Сохраняется сам предъявленный код, очищенный от пробелов
	if user.ReferFrom == nil || *user.ReferFrom != referCode {
		t.Errorf("Expected ReferFrom %q, got %v", referCode, user.ReferFrom)
	}

	if roleResult.Status != RoleLinkSkipped {
		t.Errorf("Expected role link status Skipped, got %v", roleResult.Status)
	}
}

// TestRegisterUserUnknownReferral тестирует регистрацию с неизвестным кодом:
// регистрация проходит, кредит не начисляется
func TestRegisterUserUnknownReferral(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewUserRepository(db)

	user := &models.User{
		Nickname: "oleg",
		Surname:  "Сидоров",
		Name:     "Олег",
		Age:      18,
		Mail:     "oleg@example.com",
		Refer:    "02012024030405OL",
		Gender:   1,
	}

	mock.ExpectBegin()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE nickname = \$1 OR mail = \$2`).
		WithArgs(user.Nickname, user.Mail, 1).
		WillReturnRows(sqlmock.NewRows(userColumns))

	// Код никому не принадлежит
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE refer = \$1`).
		WithArgs("NOSUCHCODE", 1).
		WillReturnRows(sqlmock.NewRows(userColumns))

	// Вставка проходит, UPDATE кредита не ожидается
	mock.ExpectQuery(`INSERT INTO "users" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM "roles" WHERE name = \$1`).
		WithArgs(ParticipantRoleName, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err = repo.Register(user, "NOSUCHCODE")
	if err != nil {
		t.Fatalf("Failed to register user with unknown referral: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}

	if user.ReferFrom != nil {
		t.Errorf("Expected ReferFrom to stay nil for unknown code, got %q", *user.ReferFrom)
	}
}

// TestRegisterUserDuplicate тестирует отказ при занятом nickname или email
func TestRegisterUserDuplicate(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewUserRepository(db)

	user := &models.User{
		Nickname: "ivan_petrov",
		Surname:  "Петров",
		Name:     "Иван",
		Mail:     "ivan@example.com",
		Refer:    "02012024030405IV",
	}

	mock.ExpectBegin()

	// Nickname уже занят
	existingRows := sqlmock.NewRows([]string{"id", "nickname", "mail"}).
		AddRow(7, "ivan_petrov", "other@example.com")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE nickname = \$1 OR mail = \$2`).
		WithArgs(user.Nickname, user.Mail, 1).
		WillReturnRows(existingRows)

	mock.ExpectRollback() // Транзакция откатывается целиком

	_, err = repo.Register(user, "")
	if !apperrors.IsDuplicate(err) {
		t.Fatalf("Expected ErrDuplicateUser, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

// TestGetByNickname тестирует метод GetByNickname репозитория
func TestGetByNickname(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "nickname", "name", "surname", "mail", "refer"}).
		AddRow(1, "ivan_petrov", "Иван", "Петров", "ivan@example.com", "02012024030405IV")

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE nickname = \$1`).
		WithArgs("ivan_petrov", 1).
		WillReturnRows(rows)

	user, err := repo.GetByNickname("ivan_petrov")
	if err != nil {
		t.Fatalf("Failed to get user by nickname: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}

	if user.Nickname != "ivan_petrov" {
		t.Errorf("Expected nickname 'ivan_petrov', got '%s'", user.Nickname)
	}
	if user.Refer != "02012024030405IV" {
		t.Errorf("Expected refer code '02012024030405IV', got '%s'", user.Refer)
	}
}

// TestGetByNicknameNotFound тестирует случай, когда пользователь не найден
func TestGetByNicknameNotFound(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE nickname = \$1`).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err = repo.GetByNickname("ghost")
	if err == nil {
		t.Fatalf("Expected error when user not found, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

// TestListUsers тестирует выборку списка пользователей с рангом
func TestListUsers(t *testing.T) {
	db, mock, err := setupTestDB()
	if err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}

	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "nickname", "name", "surname", "mail", "refer", "current_rank", "invited_count"}).
		AddRow(2, "maria_k", "Мария", "Кузнецова", "maria@example.com", "02012024030405MA", ParticipantRoleName, 3).
		AddRow(1, "ivan_petrov", "Иван", "Петров", "ivan@example.com", "02012024030405IV", nil, 0)

	mock.ExpectQuery(`SELECT users\.id AS id, (.+) FROM "users" LEFT JOIN user_role (.+) LEFT JOIN roles (.+) ORDER BY users\.id DESC`).
		WillReturnRows(rows)

	items, err := repo.List(10, 0)
	if err != nil {
		t.Fatalf("Failed to list users: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(items))
	}

	// Имя собирается из имени и фамилии
	if items[0].Name != "Мария Кузнецова" {
		t.Errorf("Expected combined name 'Мария Кузнецова', got '%s'", items[0].Name)
	}
	if items[0].CurrentRank != ParticipantRoleName {
		t.Errorf("Expected rank '%s', got '%s'", ParticipantRoleName, items[0].CurrentRank)
	}

	// Без связанной роли ранг - пустая строка
	if items[1].CurrentRank != "" {
		t.Errorf("Expected empty rank for user without role, got '%s'", items[1].CurrentRank)
	}
}
