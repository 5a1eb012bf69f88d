// FILE: internal/service/user_service.go
package service

import (
	"context"
	"time"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/entity"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/internal/repository/memory"
	"wellmate-be/internal/repository/specification"
	"wellmate-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateSettings(ctx context.Context, userId uuid.UUID, settings map[string]interface{}) (*dto.UpdateSettingsResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	cache        *memory.UserCache
	logger       logger.ILogger
	queryTimeout time.Duration
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, cache *memory.UserCache, log logger.ILogger, queryTimeout time.Duration) IUserService {
	return &userService{
		uowFactory:   uowFactory,
		cache:        cache,
		logger:       log,
		queryTimeout: queryTimeout,
	}
}

func (s *userService) load(ctx context.Context, userId uuid.UUID) (*entity.User, error) {
	if user, ok := s.cache.Get(userId); ok {
		return user, nil
	}
	qctx, cancel := queryContext(ctx, s.queryTimeout)
	defer cancel()
	user, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(qctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound(constant.ErrCodeUserNotFound, "user not found")
	}
	s.cache.Save(user)
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	user, err := s.load(ctx, userId)
	if err != nil {
		return nil, err
	}

	var birthDate *string
	if user.BirthDate != nil {
		bd := user.BirthDate.Format(time.DateOnly)
		birthDate = &bd
	}

	return &dto.UserProfileResponse{
		UUID:      user.Id.String(),
		Username:  user.Username,
		FullName:  user.FullName,
		Gender:    user.Gender,
		BirthDate: birthDate,
		Age:       user.Age,
		Settings:  user.Settings,
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

// UpdateSettings merges the given keys into the stored settings.
func (s *userService) UpdateSettings(ctx context.Context, userId uuid.UUID, settings map[string]interface{}) (*dto.UpdateSettingsResponse, error) {
	if len(settings) == 0 {
		return nil, apperror.Validation(constant.ErrCodeInvalidRequest, "settings must not be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	findCtx, cancel := queryContext(ctx, s.queryTimeout)
	user, err := uow.UserRepository().FindOne(findCtx, specification.ByID{ID: userId})
	cancel()
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeUpdateFailed, "failed to update settings", err)
	}
	if user == nil {
		return nil, apperror.NotFound(constant.ErrCodeUserNotFound, "user not found")
	}

	merged := make(map[string]interface{}, len(user.Settings)+len(settings))
	for k, v := range user.Settings {
		merged[k] = v
	}
	for k, v := range settings {
		merged[k] = v
	}
	user.Settings = merged

	updateCtx, cancel := queryContext(ctx, s.queryTimeout)
	defer cancel()
	if err := uow.UserRepository().Update(updateCtx, user); err != nil {
		return nil, apperror.Persistence(constant.ErrCodeUpdateFailed, "failed to update settings", err)
	}
	s.cache.Delete(userId)

	return &dto.UpdateSettingsResponse{
		UUID:            user.Id.String(),
		Username:        user.Username,
		UpdatedSettings: settings,
	}, nil
}
