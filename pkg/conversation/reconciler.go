package conversation

import (
	"context"
	"time"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/entity"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/pkg/database"
	"wellmate-be/pkg/lock"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const module = "ConversationReconciler"

var tracer = otel.Tracer("wellmate/conversation")

// Reconciler maps (user, session) onto a stable agent conversation id and
// records chat turns. It holds no per-request state; everything lives in Store.
type Reconciler struct {
	store  Store
	locker lock.Locker
	schema database.SchemaVersion
	logger logger.ILogger

	newID func() string
	now   func() time.Time
}

// NewReconciler builds a Reconciler. locker may be nil, in which case the
// conditional write alone guards concurrent derivations.
func NewReconciler(store Store, locker lock.Locker, schema database.SchemaVersion, log logger.ILogger) *Reconciler {
	return &Reconciler{
		store:  store,
		locker: locker,
		schema: schema,
		logger: log,
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
}

func (r *Reconciler) Schema() database.SchemaVersion {
	return r.schema
}

// ResolveOrCreateSession returns the caller's session when sessionID names an
// active session they own. Anything else (absent, unknown, closed, foreign)
// produces a fresh session and isNew=true.
func (r *Reconciler) ResolveOrCreateSession(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, sessionType string) (*entity.ChatSession, bool, error) {
	ctx, span := tracer.Start(ctx, "conversation.resolve_session")
	defer span.End()

	if sessionID != nil {
		existing, err := r.store.FindSession(ctx, *sessionID)
		switch {
		case err != nil:
			r.logger.Warn(module, "Session lookup failed, creating a new one", map[string]interface{}{
				"session_id": sessionID.String(),
				"error":      err.Error(),
			})
		case existing != nil && existing.UserId == userID:
			span.SetAttributes(attribute.Bool("session.reused", true))
			return existing, false, nil
		default:
			r.logger.Info(module, "Requested session not usable, creating a new one", map[string]interface{}{
				"session_id": sessionID.String(),
				"user_id":    userID.String(),
			})
		}
	}

	session, err := r.CreateSession(ctx, userID, sessionType, "")
	if err != nil {
		return nil, false, err
	}
	span.SetAttributes(attribute.Bool("session.reused", false))
	return session, true, nil
}

// CreateSession inserts a new active session. An empty title gets the default
// title for the session type.
func (r *Reconciler) CreateSession(ctx context.Context, userID uuid.UUID, sessionType, title string) (*entity.ChatSession, error) {
	if sessionType == "" {
		sessionType = constant.SessionTypeGeneral
	}
	if !constant.IsValidSessionType(sessionType) {
		return nil, apperror.Validation(constant.ErrCodeInvalidRequest, "invalid session_type: "+sessionType)
	}
	if title == "" {
		title = constant.DefaultSessionTitle(sessionType)
	}

	session := &entity.ChatSession{
		Id:          uuid.New(),
		UserId:      userID,
		SessionType: sessionType,
		Title:       title,
		IsActive:    true,
	}
	rows, err := r.store.CreateSession(ctx, session)
	if err != nil {
		r.logger.Error(module, "Failed to create session", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err,
		})
		return nil, apperror.Persistence(constant.ErrCodeInternal, "failed to create session", err)
	}
	if rows == 0 {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "failed to create session", nil)
	}
	return session, nil
}

// DeriveConversationId always returns a non-empty id. It prefers the id stored
// on the session, then claims a new one with a conditional write, then reuses
// whatever the newest message metadata recorded, and finally makes one up.
// A nil session means stateless mode and gets a throwaway id.
func (r *Reconciler) DeriveConversationId(ctx context.Context, session *entity.ChatSession) string {
	ctx, span := tracer.Start(ctx, "conversation.derive_id")
	defer span.End()

	if session == nil {
		span.SetAttributes(attribute.String("conversation.source", "stateless"))
		return r.newID()
	}

	if r.schema.HasConversationColumn() {
		if id, source, ok := r.deriveFromColumn(ctx, session); ok {
			span.SetAttributes(attribute.String("conversation.source", source))
			return id
		}
	}

	if id := r.conversationIdFromMessages(ctx, session.Id); id != "" {
		span.SetAttributes(attribute.String("conversation.source", "metadata"))
		return id
	}

	id := r.newID()
	r.logger.Warn(module, "Using unpersisted conversation id", map[string]interface{}{
		"session_id":      session.Id.String(),
		"conversation_id": id,
	})
	span.SetAttributes(attribute.String("conversation.source", "ephemeral"))
	return id
}

func (r *Reconciler) deriveFromColumn(ctx context.Context, session *entity.ChatSession) (string, string, bool) {
	release := r.acquire(ctx, session.Id)
	defer release()

	current, err := r.store.FindSession(ctx, session.Id)
	if err != nil {
		r.logger.Warn(module, "Failed to read session conversation id", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		return "", "", false
	}
	if current != nil && current.HasConversationId() {
		session.ConversationId = current.ConversationId
		return *current.ConversationId, "column", true
	}

	candidate := r.newID()
	rows, err := r.store.AssignConversationId(ctx, session.Id, candidate)
	if err != nil {
		details := map[string]interface{}{"session_id": session.Id.String(), "error": err.Error()}
		if database.IsUndefinedColumn(err) {
			r.logger.Warn(module, "conversation_id column missing, falling back to message metadata", details)
		} else {
			r.logger.Error(module, "Failed to store conversation id", details)
		}
		return "", "", false
	}
	if rows > 0 {
		session.ConversationId = &candidate
		return candidate, "created", true
	}

	// Someone else won the conditional write; theirs is the id.
	winner, err := r.store.FindSession(ctx, session.Id)
	if err == nil && winner != nil && winner.HasConversationId() {
		session.ConversationId = winner.ConversationId
		return *winner.ConversationId, "column", true
	}
	return "", "", false
}

func (r *Reconciler) acquire(ctx context.Context, sessionID uuid.UUID) func() {
	if r.locker == nil {
		return func() {}
	}
	release, err := r.locker.Acquire(ctx, "conversation:"+sessionID.String())
	if err != nil {
		r.logger.Warn(module, "Session lock unavailable, relying on conditional write", map[string]interface{}{
			"session_id": sessionID.String(),
			"error":      err.Error(),
		})
		return func() {}
	}
	return release
}

func (r *Reconciler) conversationIdFromMessages(ctx context.Context, sessionID uuid.UUID) string {
	msg, err := r.store.LatestMessageWithMetadata(ctx, sessionID)
	if err != nil {
		r.logger.Warn(module, "Failed to scan message metadata", map[string]interface{}{
			"session_id": sessionID.String(),
			"error":      err.Error(),
		})
		return ""
	}
	return msg.ConversationId()
}

// AppendTurn stores the user message, then the assistant message, both tagged
// with conversationID, and bumps the session. Writes are attempted
// independently and never rolled back; false means at least one failed.
func (r *Reconciler) AppendTurn(ctx context.Context, session *entity.ChatSession, userText, assistantText, conversationID string) bool {
	if session == nil {
		return false
	}
	ctx, span := tracer.Start(ctx, "conversation.append_turn")
	defer span.End()

	ts := r.now()
	metadata := func() map[string]interface{} {
		return map[string]interface{}{constant.MetadataConversationID: conversationID}
	}
	turn := []*entity.ChatMessage{
		{Id: uuid.New(), SessionId: session.Id, Role: constant.ChatMessageRoleUser, Content: userText, Timestamp: ts, Metadata: metadata()},
		// Offset keeps user-before-assistant under millisecond column precision.
		{Id: uuid.New(), SessionId: session.Id, Role: constant.ChatMessageRoleAssistant, Content: assistantText, Timestamp: ts.Add(time.Millisecond), Metadata: metadata()},
	}

	ok := true
	for _, msg := range turn {
		if err := r.store.AppendMessage(ctx, msg); err != nil {
			ok = false
			r.logger.Error(module, "Failed to store chat message", map[string]interface{}{
				"session_id": session.Id.String(),
				"role":       msg.Role,
				"error":      err,
			})
		}
	}
	if err := r.store.TouchSession(ctx, session.Id); err != nil {
		ok = false
		r.logger.Error(module, "Failed to update session timestamp", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err,
		})
	}
	span.SetAttributes(attribute.Bool("turn.persisted", ok))
	return ok
}

// GetSession returns an active session owned by userID or a NotFound error.
func (r *Reconciler) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*entity.ChatSession, error) {
	session, err := r.store.FindSession(ctx, sessionID)
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "failed to load session", err)
	}
	if session == nil || session.UserId != userID {
		return nil, apperror.NotFound(constant.ErrCodeSessionNotFound, "session not found")
	}
	return session, nil
}

func (r *Reconciler) ListSessions(ctx context.Context, userID uuid.UUID, sessionType string) ([]*entity.ChatSession, error) {
	sessions, err := r.store.ListSessions(ctx, userID, sessionType)
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "failed to list sessions", err)
	}
	return sessions, nil
}

// GetMessages returns up to limit messages of the session, oldest first.
func (r *Reconciler) GetMessages(ctx context.Context, userID, sessionID uuid.UUID, limit int) (*entity.ChatSession, []*entity.ChatMessage, error) {
	session, err := r.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		limit = constant.DefaultSessionMessageLimit
	}
	messages, err := r.store.ListMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, nil, apperror.Persistence(constant.ErrCodeInternal, "failed to load messages", err)
	}
	return session, messages, nil
}

func (r *Reconciler) CountMessages(ctx context.Context, sessionID uuid.UUID) int64 {
	n, err := r.store.CountMessages(ctx, sessionID)
	if err != nil {
		r.logger.Warn(module, "Failed to count messages", map[string]interface{}{"session_id": sessionID.String(), "error": err.Error()})
		return 0
	}
	return n
}

func (r *Reconciler) UpdateTitle(ctx context.Context, userID, sessionID uuid.UUID, title string) (*entity.ChatSession, error) {
	session, err := r.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	rows, err := r.store.UpdateTitle(ctx, sessionID, title)
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeUpdateFailed, "failed to update session", err)
	}
	if rows == 0 {
		return nil, apperror.NotFound(constant.ErrCodeSessionNotFound, "session not found")
	}
	session.Title = title
	return session, nil
}

// CloseSession deactivates the session. It keeps its messages but can no longer
// be resumed.
func (r *Reconciler) CloseSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	if _, err := r.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}
	rows, err := r.store.CloseSession(ctx, sessionID)
	if err != nil {
		return apperror.Persistence(constant.ErrCodeUpdateFailed, "failed to close session", err)
	}
	if rows == 0 {
		return apperror.NotFound(constant.ErrCodeSessionNotFound, "session not found")
	}
	return nil
}
