package conversation

import (
	"context"

	"wellmate-be/internal/entity"

	"github.com/google/uuid"
)

// Store is everything the Reconciler needs from persistence. Production wires
// UnitOfWorkStore; tests use MemoryStore or a decorator around it.
type Store interface {
	// FindSession returns nil, nil when no active session has the id.
	FindSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error)
	CreateSession(ctx context.Context, session *entity.ChatSession) (int64, error)
	// AssignConversationId must only write when no id is stored yet.
	AssignConversationId(ctx context.Context, sessionID uuid.UUID, conversationID string) (int64, error)
	LatestMessageWithMetadata(ctx context.Context, sessionID uuid.UUID) (*entity.ChatMessage, error)
	AppendMessage(ctx context.Context, message *entity.ChatMessage) error
	TouchSession(ctx context.Context, sessionID uuid.UUID) error

	ListSessions(ctx context.Context, userID uuid.UUID, sessionType string) ([]*entity.ChatSession, error)
	ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]*entity.ChatMessage, error)
	CountMessages(ctx context.Context, sessionID uuid.UUID) (int64, error)
	UpdateTitle(ctx context.Context, sessionID uuid.UUID, title string) (int64, error)
	CloseSession(ctx context.Context, sessionID uuid.UUID) (int64, error)
}
