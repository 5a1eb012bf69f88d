// FILE: internal/service/session_service.go
package service

import (
	"context"
	"strings"
	"time"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/entity"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/pkg/conversation"
	"wellmate-be/pkg/events"

	"github.com/google/uuid"
)

type ISessionService interface {
	ListSessions(ctx context.Context, userId uuid.UUID, sessionType string) (*dto.SessionListResponse, error)
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionDetailResponse, error)
	UpdateTitle(ctx context.Context, userId, sessionId uuid.UUID, req *dto.UpdateSessionTitleRequest) (*dto.SessionResponse, error)
	CloseSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionClosedResponse, error)
}

type sessionService struct {
	reconciler     *conversation.Reconciler
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewSessionService(reconciler *conversation.Reconciler, eventPublisher events.Publisher, log logger.ILogger) ISessionService {
	return &sessionService{
		reconciler:     reconciler,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *sessionService) ListSessions(ctx context.Context, userId uuid.UUID, sessionType string) (*dto.SessionListResponse, error) {
	if sessionType != "" && !constant.IsValidSessionType(sessionType) {
		return nil, apperror.Validation(constant.ErrCodeInvalidRequest, "invalid session type: "+sessionType)
	}

	sessions, err := s.reconciler.ListSessions(ctx, userId, sessionType)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SessionResponse, len(sessions))
	for i, session := range sessions {
		count := s.reconciler.CountMessages(ctx, session.Id)
		res[i] = toSessionResponse(session, &count)
	}
	return &dto.SessionListResponse{Sessions: res, Total: len(res)}, nil
}

func (s *sessionService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	session, err := s.reconciler.CreateSession(ctx, userId, req.SessionType, strings.TrimSpace(req.Title))
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session, nil), nil
}

func (s *sessionService) GetSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionDetailResponse, error) {
	session, messages, err := s.reconciler.GetMessages(ctx, userId, sessionId, constant.DefaultSessionMessageLimit)
	if err != nil {
		return nil, err
	}

	msgs := make([]*dto.MessageResponse, len(messages))
	for i, m := range messages {
		msgs[i] = &dto.MessageResponse{
			Id:        m.Id.String(),
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
			Metadata:  m.Metadata,
		}
	}
	count := int64(len(msgs))

	return &dto.SessionDetailResponse{
		SessionResponse: *toSessionResponse(session, &count),
		Messages:        msgs,
	}, nil
}

func (s *sessionService) UpdateTitle(ctx context.Context, userId, sessionId uuid.UUID, req *dto.UpdateSessionTitleRequest) (*dto.SessionResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.MissingField("title")
	}

	session, err := s.reconciler.UpdateTitle(ctx, userId, sessionId, title)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session, nil), nil
}

func (s *sessionService) CloseSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionClosedResponse, error) {
	if err := s.reconciler.CloseSession(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.SessionClosed(userId.String(), sessionId.String())); err != nil {
			s.logger.Warn("SessionService", "Failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.SessionClosedResponse{SessionId: sessionId.String(), ClosedAt: time.Now()}, nil
}

func toSessionResponse(session *entity.ChatSession, messageCount *int64) *dto.SessionResponse {
	return &dto.SessionResponse{
		SessionId:      session.Id.String(),
		SessionType:    session.SessionType,
		Title:          session.Title,
		ConversationId: session.ConversationId,
		IsActive:       session.IsActive,
		MessageCount:   messageCount,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}
