package contract

import (
	"context"

	"wellmate-be/internal/entity"
	"wellmate-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	// Create reports rows affected so callers can detect silent insert failures.
	Create(ctx context.Context, session *entity.ChatSession) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	// AssignConversationId writes the id only if none is stored yet (compare-and-swap).
	AssignConversationId(ctx context.Context, id uuid.UUID, conversationId string) (int64, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) (int64, error)
	Touch(ctx context.Context, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
