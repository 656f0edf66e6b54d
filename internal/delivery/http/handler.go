package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"NeedForPartyService/internal/models"
	"NeedForPartyService/pkg/apperrors"
	"NeedForPartyService/pkg/database"
	"NeedForPartyService/pkg/server"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserServiceInterface определяет интерфейс сервиса пользователей для HTTP-слоя
type UserServiceInterface interface {
	RegisterUser(ctx context.Context, req *models.RegisterUserRequest) (*models.UserResponse, error)
	GetUserByNickname(ctx context.Context, nickname string) (*models.UserResponse, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.UserListItem, error)
}

// PartyServiceInterface определяет интерфейс сервиса вечеринок для HTTP-слоя
type PartyServiceInterface interface {
	ListParties(ctx context.Context, upcoming bool) ([]models.PartyResponse, error)
}

// DiagnosticsProvider собирает диагностическую информацию о базе данных
type DiagnosticsProvider interface {
	CollectDiagnostics(ctx context.Context) (*database.Diagnostics, error)
}

// Handler обрабатывает HTTP-запросы API
type Handler struct {
	userService  UserServiceInterface
	partyService PartyServiceInterface
	diagnostics  DiagnosticsProvider
	logger       *zap.Logger

	// Отображаются в /api/test-db
	dbHost string
	dbName string
}

// NewHandler создает новый экземпляр Handler
func NewHandler(
	userService UserServiceInterface,
	partyService PartyServiceInterface,
	diagnostics DiagnosticsProvider,
	logger *zap.Logger,
	dbHost, dbName string,
) *Handler {
	return &Handler{
		userService:  userService,
		partyService: partyService,
		diagnostics:  diagnostics,
		logger:       logger,
		dbHost:       dbHost,
		dbName:       dbName,
	}
}

// respondWithJSON отправляет JSON-ответ клиенту
func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		h.logger.Error("Failed to write HTTP response", zap.Error(err))
	}
}

// respondWithError отправляет JSON-ответ с ошибкой
func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"detail": message})
}

// Root обрабатывает корневой эндпоинт
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "🎉 Need for Party API работает!",
		"version": "1.0.0",
		"docs":    "/docs",
		"health":  "/api/health",
	})
}

// Docs возвращает краткую сводку доступных эндпоинтов API
func (h *Handler) Docs(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"GET /":                    "информация о сервисе",
		"GET /api/health":          "состояние сервиса и зависимостей",
		"GET /api/test-db":         "диагностика подключения к БД",
		"POST /api/user/register":  "регистрация пользователя",
		"GET /api/user/{nickname}": "профиль пользователя по nickname",
		"GET /api/users":           "список пользователей",
		"GET /api/parties":         "список вечеринок",
	})
}

// TestDB обрабатывает диагностический эндпоинт /api/test-db
func (h *Handler) TestDB(w http.ResponseWriter, r *http.Request) {
	diag, err := h.diagnostics.CollectDiagnostics(r.Context())
	if err != nil {
		server.WithRequestID(r.Context(), h.logger).Error("Database diagnostics failed", zap.Error(err))
		h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":    false,
			"message":    "Не удалось подключиться к БД",
			"tables":     []string{},
			"user_count": 0,
		})
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "БД подключена успешно",
		"tables":     diag.Tables,
		"user_count": diag.UserCount,
		"server":     h.dbHost,
		"database":   h.dbName,
	})
}

// RegisterUser обрабатывает регистрацию нового пользователя
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	log := server.WithRequestID(r.Context(), h.logger)

	var req models.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Invalid registration payload", zap.Error(err))
		h.respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}

	if missing := firstMissingField(&req); missing != "" {
		log.Warn("Registration payload missing required field", zap.String("field", missing))
		h.respondWithError(w, http.StatusBadRequest, "Не заполнено обязательное поле: "+missing)
		return
	}

	user, err := h.userService.RegisterUser(r.Context(), &req)
	if err != nil {
		if apperrors.IsDuplicate(err) {
			h.respondWithError(w, http.StatusBadRequest,
				"Пользователь с таким nickname или email уже существует")
			return
		}

		// Внутренние детали хранилища остаются в журнале, клиент получает
		// обобщенное сообщение
		h.respondWithError(w, http.StatusInternalServerError, "Ошибка при регистрации")
		return
	}

	h.respondWithJSON(w, http.StatusOK, models.RegisterUserResponse{
		Success: true,
		Message: "Регистрация успешна! 🎉",
		User:    *user,
	})
}

// GetUser обрабатывает получение профиля пользователя по nickname
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	nickname := chi.URLParam(r, "nickname")
	if nickname == "" {
		h.respondWithError(w, http.StatusBadRequest, "Не указан nickname")
		return
	}

	user, err := h.userService.GetUserByNickname(r.Context(), nickname)
	if err != nil {
		if apperrors.IsNotFound(err) {
			h.respondWithError(w, http.StatusNotFound, "Пользователь не найден")
			return
		}
		h.respondWithError(w, http.StatusInternalServerError, "Ошибка получения пользователя")
		return
	}

	h.respondWithJSON(w, http.StatusOK, user)
}

// ListUsers обрабатывает получение списка пользователей
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	users, err := h.userService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Ошибка получения списка пользователей")
		return
	}

	h.respondWithJSON(w, http.StatusOK, users)
}

// ListParties обрабатывает получение списка вечеринок
func (h *Handler) ListParties(w http.ResponseWriter, r *http.Request) {
	// По умолчанию отдаются только предстоящие вечеринки
	upcoming := true
	if raw := r.URL.Query().Get("upcoming"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			upcoming = parsed
		}
	}

	parties, err := h.partyService.ListParties(r.Context(), upcoming)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Ошибка получения списка вечеринок")
		return
	}

	h.respondWithJSON(w, http.StatusOK, parties)
}

// firstMissingField возвращает имя первого незаполненного обязательного поля
func firstMissingField(req *models.RegisterUserRequest) string {
	fields := []struct {
		name  string
		value string
	}{
		{"name", req.Name},
		{"surname", req.Surname},
		{"email", req.Email},
		{"nickname", req.Nickname},
	}

	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			return field.name
		}
	}

	return ""
}
