// FILE: internal/service/publisher_service.go
package service

import (
	"context"
	"encoding/json"

	"wellmate-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type ITurnPublisher interface {
	PublishTurn(ctx context.Context, turn dto.PersistChatTurnMessage) error
}

type turnPublisher struct {
	topicName string
	publisher message.Publisher
}

func NewTurnPublisher(topicName string, publisher message.Publisher) ITurnPublisher {
	return &turnPublisher{
		topicName: topicName,
		publisher: publisher,
	}
}

func (p *turnPublisher) PublishTurn(ctx context.Context, turn dto.PersistChatTurnMessage) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.publisher.Publish(p.topicName, msg)
}
