package dto

import (
	"strings"

	"github.com/google/uuid"
)

// ChatRequest accepts the message under either "message" or "text".
type ChatRequest struct {
	Message   string `json:"message"`
	Text      string `json:"text"`
	SessionId string `json:"session_id" validate:"omitempty,uuid"`
}

func (r *ChatRequest) Query() string {
	if m := strings.TrimSpace(r.Message); m != "" {
		return m
	}
	return strings.TrimSpace(r.Text)
}

type ChatResponse struct {
	Response       string  `json:"response"`
	UserInput      string  `json:"user_input"`
	SessionId      *string `json:"session_id"`
	ConversationId string  `json:"conversation_id"`
	IsNewSession   bool    `json:"is_new_session"`
	Type           string  `json:"type"`
	Persisted      bool    `json:"persisted"`
}

// PersistChatTurnMessage is queued once a streamed reply has been drained.
type PersistChatTurnMessage struct {
	SessionId      uuid.UUID `json:"session_id"`
	UserId         uuid.UUID `json:"user_id"`
	UserText       string    `json:"user_text"`
	AssistantText  string    `json:"assistant_text"`
	ConversationId string    `json:"conversation_id"`
}
