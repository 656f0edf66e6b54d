package service

import (
	"context"
	"fmt"

	"NeedForPartyService/internal/models"
	"NeedForPartyService/internal/repository/postgres"
	"NeedForPartyService/pkg/apperrors"
	"NeedForPartyService/pkg/server"

	"go.uber.org/zap"
)

// Значения по умолчанию для полей, которые не передаются при регистрации
const (
	defaultAge    = 18
	defaultGender = 1
)

// ReferCodeGenerator описывает генератор реферальных кодов
type ReferCodeGenerator interface {
	Generate(name string) string
}

// UserRepositoryInterface описывает интерфейс для работы с репозиторием пользователей
type UserRepositoryInterface interface {
	Register(user *models.User, referFromCode string) (postgres.RoleLinkResult, error)
	GetByID(id uint) (*models.User, error)
	GetByNickname(nickname string) (*models.User, error)
	GetByReferCode(code string) (*models.User, error)
	List(limit, offset int) ([]models.UserListItem, error)
}

// CacheRepositoryInterface описывает интерфейс для работы с кэшем
type CacheRepositoryInterface interface {
	SetUserProfile(ctx context.Context, profile *models.UserResponse) error
	GetUserProfile(ctx context.Context, nickname string) (*models.UserResponse, error)
	DeleteUserProfile(ctx context.Context, nickname string) error
	SetPartyList(ctx context.Context, upcoming bool, parties []models.PartyResponse) error
	GetPartyList(ctx context.Context, upcoming bool) ([]models.PartyResponse, error)
}

// UserService представляет сервис для работы с пользователями
type UserService struct {
	userRepo   UserRepositoryInterface
	cacheRepo  CacheRepositoryInterface
	referCodes ReferCodeGenerator
	logger     *zap.Logger
}

// NewUserService создает новый экземпляр UserService
func NewUserService(userRepo UserRepositoryInterface, cacheRepo CacheRepositoryInterface, referCodes ReferCodeGenerator, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		referCodes: referCodes,
		logger:     logger,
	}
}

// RegisterUser регистрирует нового пользователя: генерирует реферальный код,
// выполняет транзакционную процедуру в хранилище и строит ответ
func (s *UserService) RegisterUser(ctx context.Context, req *models.RegisterUserRequest) (*models.UserResponse, error) {
	log := server.WithRequestID(ctx, s.logger)

	user := &models.User{
		Nickname:     req.Nickname,
		Surname:      req.Surname,
		Name:         req.Name,
		Age:          defaultAge,
		Mail:         req.Email,
		Refer:        s.referCodes.Generate(req.Name),
		Gender:       defaultGender,
		InvitedCount: 0,
	}

	roleResult, err := s.userRepo.Register(user, req.ReferFrom)
	if err != nil {
		if apperrors.IsDuplicate(err) {
			log.Warn("Registration rejected: nickname or email already taken",
				zap.String("nickname", req.Nickname))
			server.RecordRegistration("duplicate")
			return nil, err
		}

		log.Error("Failed to register user",
			zap.Error(err),
			zap.String("nickname", req.Nickname))
		server.RecordRegistration("error")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRegistrationFailed, err)
	}

	s.logRoleResult(log, roleResult, user)

	response := &models.UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Surname:     user.Surname,
		Nickname:    user.Nickname,
		Email:       user.Mail,
		Refer:       user.Refer,
		CurrentRank: postgres.ParticipantRoleName,
	}

	// Кэшируем профиль; сбой кэша не считается ошибкой регистрации
	if err := s.cacheRepo.SetUserProfile(ctx, response); err != nil {
		log.Warn("Failed to cache user profile", zap.Error(err), zap.String("nickname", user.Nickname))
	}

	server.RecordRegistration("success")
	log.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("nickname", user.Nickname),
		zap.Bool("referred", user.ReferFrom != nil))

	return response, nil
}

// GetUserByNickname получает профиль пользователя по nickname
func (s *UserService) GetUserByNickname(ctx context.Context, nickname string) (*models.UserResponse, error) {
	log := server.WithRequestID(ctx, s.logger)

	// Сначала пытаемся получить профиль из кэша
	profile, err := s.cacheRepo.GetUserProfile(ctx, nickname)
	if err == nil {
		log.Debug("User profile retrieved from cache", zap.String("nickname", nickname))
		return profile, nil
	}

	user, err := s.userRepo.GetByNickname(nickname)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		log.Error("Failed to get user", zap.Error(err), zap.String("nickname", nickname))
		return nil, err
	}

	profile = &models.UserResponse{
		ID:                   user.ID,
		Name:                 user.Name,
		Surname:              user.Surname,
		Nickname:             user.Nickname,
		Email:                user.Mail,
		Refer:                user.Refer,
		CurrentRank:          postgres.ParticipantRoleName,
		VisitsCount:          user.VisitsCount,
		InvitedCount:         user.InvitedCount,
		TotalBarSpent:        user.TotalBarSpent,
		BattleParticipations: user.BattleParticipations,
	}

	if err := s.cacheRepo.SetUserProfile(ctx, profile); err != nil {
		log.Warn("Failed to cache user profile", zap.Error(err), zap.String("nickname", nickname))
	}

	return profile, nil
}

// ListUsers возвращает страницу пользователей для отображения
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.UserListItem, error) {
	log := server.WithRequestID(ctx, s.logger)

	items, err := s.userRepo.List(limit, offset)
	if err != nil {
		log.Error("Failed to list users", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, err
	}

	return items, nil
}

// logRoleResult записывает исход необязательного шага назначения роли.
// Предупреждение попадает в журнал, но никогда не поднимается до вызывающего
func (s *UserService) logRoleResult(log *zap.Logger, result postgres.RoleLinkResult, user *models.User) {
	switch result.Status {
	case postgres.RoleLinkOk:
		log.Debug("Participant role linked", zap.Uint("user_id", user.ID))
	case postgres.RoleLinkSkipped:
		log.Debug("Participant role not present, link skipped", zap.Uint("user_id", user.ID))
	case postgres.RoleLinkWarning:
		log.Warn("Failed to link participant role",
			zap.Error(result.Err),
			zap.Uint("user_id", user.ID))
	}
}
