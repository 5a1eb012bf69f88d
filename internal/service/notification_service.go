package service

import (
	"context"
	"fmt"
	"time"

	"wellmate-be/internal/dto"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/pkg/events"
	pktNats "wellmate-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
)

const (
	notificationSubject = "events.>"
	notificationDurable = "wellmate-notifier"
)

// NotificationDelivery defines how to push real-time updates.
// Implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification dto.Notification)
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

type notificationTemplate struct {
	title   string
	message func(payload map[string]interface{}) string
}

var notificationTemplates = map[string]notificationTemplate{
	events.TypeUserRegistered: {
		title:   "Welcome to WellMate",
		message: func(map[string]interface{}) string { return "Your account is ready." },
	},
	events.TypeChatTurnPersisted: {
		title: "Conversation saved",
		message: func(p map[string]interface{}) string {
			if persisted, _ := p["persisted"].(bool); !persisted {
				return "Your last reply could not be fully saved to history."
			}
			return "Your last reply was saved to history."
		},
	},
	events.TypeHealthDataAdded: {
		title: "Health data recorded",
		message: func(p map[string]interface{}) string {
			return fmt.Sprintf("New %v reading: %v", p["data_type"], p["value"])
		},
	},
	events.TypeHealthDataDeleted: {
		title: "Health data removed",
		message: func(p map[string]interface{}) string {
			return fmt.Sprintf("%v record(s) deleted", p["deleted_count"])
		},
	},
	events.TypeSessionClosed: {
		title:   "Session closed",
		message: func(map[string]interface{}) string { return "The consultation session has been closed." },
	},
}

type NotificationService struct {
	subscriber EventSubscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub EventSubscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start(ctx context.Context) {
	if err := s.subscriber.Subscribe(ctx, notificationSubject, notificationDurable, s.handleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to "+notificationSubject, nil)
}

// handleEvent never fails: events without a template or owner are skipped.
func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	tmpl, ok := notificationTemplates[event.EventType()]
	if !ok {
		return nil
	}

	userID, err := uuid.Parse(event.UserID())
	if err != nil {
		s.logger.Warn("NotificationService", "Event has no routable user", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	payload := event.Payload()
	s.delivery.Send(userID, dto.Notification{
		Id:        uuid.New(),
		UserId:    userID,
		Type:      event.EventType(),
		Title:     tmpl.title,
		Message:   tmpl.message(payload),
		Metadata:  payload,
		CreatedAt: eventTime(event),
	})
	return nil
}

func eventTime(event events.Event) time.Time {
	if ts := event.Timestamp(); !ts.IsZero() {
		return ts
	}
	return time.Now()
}
