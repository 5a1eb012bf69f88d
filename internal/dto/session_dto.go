package dto

import "time"

type CreateSessionRequest struct {
	SessionType string `json:"session_type" validate:"omitempty,oneof=physical mental general"`
	Title       string `json:"title" validate:"omitempty,max=200"`
}

type UpdateSessionTitleRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type SessionResponse struct {
	SessionId      string    `json:"session_id"`
	SessionType    string    `json:"session_type"`
	Title          string    `json:"title"`
	ConversationId *string   `json:"conversation_id"`
	IsActive       bool      `json:"is_active"`
	MessageCount   *int64    `json:"message_count,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SessionListResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Total    int                `json:"total"`
}

type MessageResponse struct {
	Id        string                 `json:"id"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionDetailResponse struct {
	SessionResponse
	Messages []*MessageResponse `json:"messages"`
}

type SessionClosedResponse struct {
	SessionId string    `json:"session_id"`
	ClosedAt  time.Time `json:"closed_at"`
}
