// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/entity"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/internal/repository/specification"
	"wellmate-be/internal/repository/unitofwork"
	"wellmate-be/pkg/events"
	"wellmate-be/pkg/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	issuer         token.IIssuer
	eventPublisher events.Publisher
	logger         logger.ILogger
	queryTimeout   time.Duration
}

// NewAuthService bounds every repository call by queryTimeout.
func NewAuthService(uowFactory unitofwork.RepositoryFactory, issuer token.IIssuer, eventPublisher events.Publisher, log logger.ILogger, queryTimeout time.Duration) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		issuer:         issuer,
		eventPublisher: eventPublisher,
		logger:         log,
		queryTimeout:   queryTimeout,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	username := strings.TrimSpace(req.Username)

	// 1. Check for existing user
	findCtx, cancel := queryContext(ctx, s.queryTimeout)
	existing, err := uow.UserRepository().FindOne(findCtx, specification.ByUsername{Username: username})
	cancel()
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "registration failed, please retry later", err)
	}
	if existing != nil {
		return nil, apperror.Conflict(constant.ErrCodeUserAlreadyExists, "username already exists")
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	// 3. Create User Entity
	user := &entity.User{
		Id:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Gender:       req.Gender,
		Age:          req.Age,
		Settings:     map[string]interface{}{},
		IsActive:     true,
	}
	if req.BirthDate != nil {
		bd, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return nil, apperror.Validation(constant.ErrCodeInvalidRequest, "birth_date must be YYYY-MM-DD")
		}
		user.BirthDate = &bd
	}

	// 4. Save to DB
	createCtx, cancel := queryContext(ctx, s.queryTimeout)
	defer cancel()
	if err := uow.UserRepository().Create(createCtx, user); err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "registration failed, please retry later", err)
	}

	s.publish(ctx, events.UserRegistered(user.Id.String(), user.Username))
	s.logger.Info("AuthService", "User registered", map[string]interface{}{"user_id": user.Id.String(), "username": user.Username})

	return &dto.RegisterResponse{UUID: user.Id.String(), Username: user.Username}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Check if user exists
	findCtx, cancel := queryContext(ctx, s.queryTimeout)
	user, err := uow.UserRepository().FindOne(findCtx, specification.ByUsername{Username: strings.TrimSpace(req.Username)})
	cancel()
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "login failed, please retry later", err)
	}
	if user == nil {
		return nil, apperror.Auth(constant.ErrCodeAuthFailed, "invalid username or password")
	}

	// 2. Compare passwords
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Auth(constant.ErrCodeAuthFailed, "invalid username or password")
	}

	// 3. Disabled accounts cannot sign in
	if !user.IsActive {
		return nil, apperror.Forbidden(constant.ErrCodeAccountInactive, "account is disabled")
	}

	// 4. Generate JWT pair
	pair, err := s.issuer.Issue(user.Id.String(), user.Username)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}

	loginCtx, cancel := queryContext(ctx, s.queryTimeout)
	defer cancel()
	if err := uow.UserRepository().UpdateLastLogin(loginCtx, user.Id); err != nil {
		s.logger.Warn("AuthService", "Failed to update last login", map[string]interface{}{"user_id": user.Id.String(), "error": err.Error()})
	}

	s.publish(ctx, events.UserLogin(user.Id.String(), user.Username))

	return tokenResponse(pair, user.Id.String(), user.Username, user.FullName), nil
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	pair, claims, err := s.issuer.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) || errors.Is(err, token.ErrInvalidTokenType) {
			return nil, apperror.Auth(constant.ErrCodeInvalidRefreshToken, "refresh token is invalid or expired")
		}
		return nil, apperror.Internal("failed to refresh token", err)
	}

	// Tokens of deleted or disabled accounts are not renewed.
	userId, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperror.Auth(constant.ErrCodeInvalidRefreshToken, "refresh token is invalid or expired")
	}
	findCtx, cancel := queryContext(ctx, s.queryTimeout)
	defer cancel()
	user, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(findCtx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "refresh failed, please retry later", err)
	}
	if user == nil {
		return nil, apperror.Auth(constant.ErrCodeInvalidRefreshToken, "refresh token is invalid or expired")
	}
	if !user.IsActive {
		return nil, apperror.Forbidden(constant.ErrCodeAccountInactive, "account is disabled")
	}

	return tokenResponse(pair, user.Id.String(), user.Username, user.FullName), nil
}

func tokenResponse(pair *token.Pair, userID, username, fullName string) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
		UUID:         userID,
		Username:     username,
		FullName:     fullName,
	}
}

func (s *authService) publish(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("AuthService", "Failed to publish event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
	}
}
