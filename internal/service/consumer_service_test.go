package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"wellmate-be/internal/dto"
	"wellmate-be/internal/entity"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/pkg/conversation"
	"wellmate-be/pkg/database"
	"wellmate-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerSkipsMalformedAndStoresTurn(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	store := conversation.NewMemoryStore()
	reconciler := conversation.NewReconciler(store, nil, database.SchemaCurrent, logger.NewNopLogger())
	pub := &recordingPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, NewConsumerService(pubSub, "turns", reconciler, pub, logger.NewNopLogger()).Consume(ctx))

	session := &entity.ChatSession{Id: uuid.New(), UserId: uuid.New(), SessionType: "general", IsActive: true}
	_, err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	payload, err := json.Marshal(dto.PersistChatTurnMessage{
		SessionId:      session.Id,
		UserId:         session.UserId,
		UserText:       "q",
		AssistantText:  "a",
		ConversationId: "conv-1",
	})
	require.NoError(t, err)

	require.NoError(t, pubSub.Publish("turns", message.NewMessage(watermill.NewUUID(), []byte("{not json"))))
	require.NoError(t, pubSub.Publish("turns", message.NewMessage(watermill.NewUUID(), payload)))

	assert.Eventually(t, func() bool {
		return len(pub.types()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{events.TypeChatTurnPersisted}, pub.types())

	msgs, err := store.ListMessages(ctx, session.Id, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "conv-1", msgs[0].ConversationId())
}
