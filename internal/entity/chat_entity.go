package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	SessionType    string
	Title          string
	ConversationId *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (s *ChatSession) HasConversationId() bool {
	return s.ConversationId != nil && *s.ConversationId != ""
}

type ChatMessage struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      string
	Content   string
	Timestamp time.Time
	Metadata  map[string]interface{}
}

// ConversationId reads the conversation id recorded in the message metadata.
func (m *ChatMessage) ConversationId() string {
	if m == nil || m.Metadata == nil {
		return ""
	}
	if v, ok := m.Metadata["conversation_id"].(string); ok {
		return v
	}
	return ""
}
