// FILE: internal/service/chat_service.go
package service

import (
	"context"
	"errors"
	"sync"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/entity"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/pkg/chatagent"
	"wellmate-be/pkg/conversation"
	"wellmate-be/pkg/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var chatTracer = otel.Tracer("wellmate/chat")

type IChatService interface {
	Chat(ctx context.Context, userId uuid.UUID, sessionType string, req *dto.ChatRequest) (*dto.ChatResponse, error)
	Stream(ctx context.Context, userId uuid.UUID, sessionType string, req *dto.ChatRequest) (*ChatStream, error)
}

// ChatStream forwards the agent's raw stream. Callers must call Finish once
// the body has been drained or abandoned. Only a drained stream is stored.
type ChatStream struct {
	*chatagent.Stream
	SessionId    *uuid.UUID
	IsNewSession bool

	once   sync.Once
	finish func(answer string, drained bool)
}

func (s *ChatStream) Finish() {
	s.once.Do(func() {
		_ = s.Stream.Close()
		if s.finish != nil {
			s.finish(s.Answer(), s.Drained())
		}
	})
}

type chatService struct {
	reconciler     *conversation.Reconciler
	agent          chatagent.Agent
	bots           map[string]string
	turnPublisher  ITurnPublisher
	eventPublisher events.Publisher
	logger         logger.ILogger
}

// NewChatService maps session types to agent bot ids through bots. Types with
// no entry use the agent's default bot.
func NewChatService(
	reconciler *conversation.Reconciler,
	agent chatagent.Agent,
	bots map[string]string,
	turnPublisher ITurnPublisher,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		reconciler:     reconciler,
		agent:          agent,
		bots:           bots,
		turnPublisher:  turnPublisher,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

type chatTurn struct {
	userId         uuid.UUID
	query          string
	session        *entity.ChatSession
	isNew          bool
	conversationId string
}

func (t *chatTurn) sessionId() *uuid.UUID {
	if t.session == nil {
		return nil
	}
	id := t.session.Id
	return &id
}

// prepare resolves the session and conversation id. A store outage leaves
// session nil and the turn runs without history.
func (s *chatService) prepare(ctx context.Context, userId uuid.UUID, sessionType string, req *dto.ChatRequest) (*chatTurn, error) {
	// 1. Validate input
	query := req.Query()
	if query == "" {
		return nil, apperror.MissingField("message")
	}

	var requested *uuid.UUID
	if req.SessionId != "" {
		id, err := uuid.Parse(req.SessionId)
		if err != nil {
			return nil, apperror.Validation(constant.ErrCodeInvalidRequest, "session_id must be a UUID")
		}
		requested = &id
	}

	// 2. Resolve or create session
	turn := &chatTurn{userId: userId, query: query}
	session, isNew, err := s.reconciler.ResolveOrCreateSession(ctx, userId, requested, sessionType)
	if err != nil {
		if apperror.IsKind(err, apperror.KindValidation) {
			return nil, err
		}
		s.logger.Warn("ChatService", "Session unavailable, continuing without history", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	} else {
		turn.session = session
		turn.isNew = isNew
	}

	// 3. Derive conversation id
	turn.conversationId = s.reconciler.DeriveConversationId(ctx, turn.session)
	return turn, nil
}

func (s *chatService) request(turn *chatTurn) chatagent.Request {
	return chatagent.Request{
		ConversationID: turn.conversationId,
		User:           turn.userId.String(),
		Query:          turn.query,
	}
}

func (s *chatService) options(sessionType string) []chatagent.Option {
	if bot := s.bots[sessionType]; bot != "" {
		return []chatagent.Option{chatagent.WithBotID(bot)}
	}
	return nil
}

// Chat returns chatagent.ErrNoAnswer unwrapped so callers can render it as a
// warning. Nothing is stored in that case.
func (s *chatService) Chat(ctx context.Context, userId uuid.UUID, sessionType string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	ctx, span := chatTracer.Start(ctx, "chat.send")
	defer span.End()
	span.SetAttributes(attribute.String("chat.session_type", sessionType))

	turn, err := s.prepare(ctx, userId, sessionType, req)
	if err != nil {
		return nil, err
	}

	// 4. Ask the agent
	answer, err := s.agent.Send(ctx, s.request(turn), s.options(sessionType)...)
	if err != nil {
		if errors.Is(err, chatagent.ErrNoAnswer) {
			s.logger.Warn("ChatService", "Agent returned no answer", map[string]interface{}{"conversation_id": turn.conversationId})
			return nil, err
		}
		s.logger.Error("ChatService", "Agent call failed", map[string]interface{}{
			"conversation_id": turn.conversationId,
			"error":           err.Error(),
		})
		return nil, apperror.AgentUnavailable("the health assistant is temporarily unavailable", err)
	}

	// 5. Persist the turn; the reply goes out regardless
	persisted := s.reconciler.AppendTurn(context.WithoutCancel(ctx), turn.session, turn.query, answer, turn.conversationId)
	s.publishTurn(ctx, turn, persisted)
	span.SetAttributes(attribute.Bool("chat.persisted", persisted))

	var sessionIdStr *string
	if id := turn.sessionId(); id != nil {
		str := id.String()
		sessionIdStr = &str
	}

	return &dto.ChatResponse{
		Response:       answer,
		UserInput:      turn.query,
		SessionId:      sessionIdStr,
		ConversationId: turn.conversationId,
		IsNewSession:   turn.isNew,
		Type:           sessionType,
		Persisted:      persisted,
	}, nil
}

func (s *chatService) Stream(ctx context.Context, userId uuid.UUID, sessionType string, req *dto.ChatRequest) (*ChatStream, error) {
	ctx, span := chatTracer.Start(ctx, "chat.stream")
	defer span.End()

	turn, err := s.prepare(ctx, userId, sessionType, req)
	if err != nil {
		return nil, err
	}

	stream, err := s.agent.Stream(ctx, s.request(turn), s.options(sessionType)...)
	if err != nil {
		s.logger.Error("ChatService", "Agent stream failed", map[string]interface{}{
			"conversation_id": turn.conversationId,
			"error":           err.Error(),
		})
		appErr := apperror.AgentUnavailable("the health assistant is temporarily unavailable", err)
		appErr.Code = constant.ErrCodeStream
		return nil, appErr
	}

	return &ChatStream{
		Stream:       stream,
		SessionId:    turn.sessionId(),
		IsNewSession: turn.isNew,
		finish: func(answer string, drained bool) {
			if !drained {
				s.dropStreamedTurn(turn, answer)
				return
			}
			s.queueStreamedTurn(context.WithoutCancel(ctx), turn, answer)
		},
	}, nil
}

// dropStreamedTurn discards a stream that failed or was abandoned before EOF.
// A partial reply is never stored as a finished turn.
func (s *chatService) dropStreamedTurn(turn *chatTurn, partial string) {
	fields := map[string]interface{}{
		"conversation_id": turn.conversationId,
		"partial_length":  len(partial),
	}
	if turn.session != nil {
		fields["session_id"] = turn.session.Id.String()
	}
	s.logger.Warn("ChatService", "Stream not drained, turn not stored", fields)
}

// queueStreamedTurn hands the drained turn to the persistence queue, storing it
// inline when the queue rejects it.
func (s *chatService) queueStreamedTurn(ctx context.Context, turn *chatTurn, answer string) {
	if turn.session == nil {
		return
	}
	if answer == "" {
		s.logger.Warn("ChatService", "Stream ended without an answer, turn not stored", map[string]interface{}{
			"session_id": turn.session.Id.String(),
		})
		return
	}

	msg := dto.PersistChatTurnMessage{
		SessionId:      turn.session.Id,
		UserId:         turn.userId,
		UserText:       turn.query,
		AssistantText:  answer,
		ConversationId: turn.conversationId,
	}
	if s.turnPublisher != nil {
		err := s.turnPublisher.PublishTurn(ctx, msg)
		if err == nil {
			return
		}
		s.logger.Warn("ChatService", "Failed to queue streamed turn, storing inline", map[string]interface{}{"error": err.Error()})
	}

	persisted := s.reconciler.AppendTurn(ctx, turn.session, turn.query, answer, turn.conversationId)
	s.publishTurn(ctx, turn, persisted)
}

func (s *chatService) publishTurn(ctx context.Context, turn *chatTurn, persisted bool) {
	if s.eventPublisher == nil || turn.session == nil {
		return
	}
	event := events.ChatTurnPersisted(turn.userId.String(), turn.session.Id.String(), turn.conversationId, persisted)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("ChatService", "Failed to publish event", map[string]interface{}{"error": err.Error()})
	}
}
