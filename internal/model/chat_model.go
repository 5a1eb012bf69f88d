package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatSession.ConversationId maps a column that legacy deployments lack.
// Repositories omit it when the schema probe reports the legacy layout.
type ChatSession struct {
	Id             uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	UserId         uuid.UUID `gorm:"type:varchar(36);not null;index:idx_chat_sessions_user_updated,priority:1"`
	SessionType    string    `gorm:"type:varchar(20);not null;default:'general'"`
	Title          string    `gorm:"type:varchar(255);not null"`
	ConversationId *string   `gorm:"type:varchar(64)"`
	IsActive       bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;index:idx_chat_sessions_user_updated,priority:2"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

type ChatMessage struct {
	Id        uuid.UUID      `gorm:"type:varchar(36);primaryKey"`
	SessionId uuid.UUID      `gorm:"type:varchar(36);not null;index:idx_chat_messages_session_ts,priority:1"`
	Role      string         `gorm:"type:varchar(16);not null"`
	Content   string         `gorm:"type:text;not null"`
	Timestamp time.Time      `gorm:"not null;index:idx_chat_messages_session_ts,priority:2"`
	Metadata  datatypes.JSON `gorm:"type:json"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
