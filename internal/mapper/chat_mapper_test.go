package mapper

import (
	"testing"
	"time"

	"wellmate-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessageMetadataRoundTrip(t *testing.T) {
	m := NewChatMapper()
	msg := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: uuid.New(),
		Role:      "assistant",
		Content:   "drink water",
		Timestamp: time.Now(),
		Metadata:  map[string]interface{}{"conversation_id": "conv-42"},
	}

	back := m.ChatMessageToEntity(m.ChatMessageToModel(msg))

	require.NotNil(t, back)
	assert.Equal(t, "conv-42", back.ConversationId())
	assert.Equal(t, msg.Content, back.Content)
}

func TestJSONToMapToleratesGarbage(t *testing.T) {
	assert.Nil(t, jsonToMap(nil))
	assert.Nil(t, jsonToMap([]byte("{not json")))
	assert.Nil(t, mapToJSON(nil))
}
