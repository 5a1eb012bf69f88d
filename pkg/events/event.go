package events

import (
	"context"
	"time"
)

const (
	TypeUserRegistered    = "user.registered"
	TypeUserLogin         = "user.login"
	TypeChatTurnPersisted = "chat.turn.persisted"
	TypeHealthDataAdded   = "health.data.added"
	TypeHealthDataDeleted = "health.data.deleted"
	TypeSessionClosed     = "session.closed"
)

const payloadKeyUserID = "user_id"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the dotted type code (e.g. "user.login").
	EventType() string

	// UserID is the user the event concerns, used to route notifications.
	UserID() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

// Publisher is implemented by pkg/nats.Publisher and NopPublisher.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	User       string                 `json:"user_id"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType, userID string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = make(map[string]interface{})
	}
	return BaseEvent{Type: eventType, User: userID, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) UserID() string {
	if e.User != "" {
		return e.User
	}
	if v, ok := e.Data[payloadKeyUserID].(string); ok {
		return v
	}
	return ""
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func UserRegistered(userID, username string) BaseEvent {
	return New(TypeUserRegistered, userID, map[string]interface{}{"username": username})
}

func UserLogin(userID, username string) BaseEvent {
	return New(TypeUserLogin, userID, map[string]interface{}{"username": username})
}

func ChatTurnPersisted(userID, sessionID, conversationID string, persisted bool) BaseEvent {
	return New(TypeChatTurnPersisted, userID, map[string]interface{}{
		"session_id":      sessionID,
		"conversation_id": conversationID,
		"persisted":       persisted,
	})
}

func HealthDataAdded(userID, recordID, dataType, value string) BaseEvent {
	return New(TypeHealthDataAdded, userID, map[string]interface{}{
		"record_id": recordID,
		"data_type": dataType,
		"value":     value,
	})
}

func HealthDataDeleted(userID string, deleted int64) BaseEvent {
	return New(TypeHealthDataDeleted, userID, map[string]interface{}{"deleted_count": deleted})
}

func SessionClosed(userID, sessionID string) BaseEvent {
	return New(TypeSessionClosed, userID, map[string]interface{}{"session_id": sessionID})
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
