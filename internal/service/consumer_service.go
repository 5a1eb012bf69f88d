// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"wellmate-be/internal/dto"
	"wellmate-be/internal/entity"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/pkg/conversation"
	"wellmate-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	reconciler     *conversation.Reconciler
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	reconciler *conversation.Reconciler,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		reconciler:     reconciler,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks. A partially stored turn is logged by the
// reconciler and not redelivered.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PersistChatTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal turn message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	session := &entity.ChatSession{Id: payload.SessionId, UserId: payload.UserId}
	persisted := cs.reconciler.AppendTurn(context.WithoutCancel(ctx), session, payload.UserText, payload.AssistantText, payload.ConversationId)

	cs.logger.Info("ConsumerService", "Streamed turn processed", map[string]interface{}{
		"session_id": payload.SessionId.String(),
		"persisted":  persisted,
	})

	if cs.eventPublisher != nil {
		event := events.ChatTurnPersisted(payload.UserId.String(), payload.SessionId.String(), payload.ConversationId, persisted)
		if err := cs.eventPublisher.Publish(ctx, event); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}

	msg.Ack()
}
