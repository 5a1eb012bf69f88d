package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/entity"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/pkg/chatagent"
	"wellmate-be/pkg/conversation"
	"wellmate-be/pkg/database"
	"wellmate-be/pkg/events"
	"wellmate-be/pkg/lock"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails selected operations of the in-memory store.
type flakyStore struct {
	*conversation.MemoryStore
	sessionsDown bool
	appendDown   bool
}

func (s *flakyStore) FindSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	if s.sessionsDown {
		return nil, errStoreDown
	}
	return s.MemoryStore.FindSession(ctx, id)
}

func (s *flakyStore) CreateSession(ctx context.Context, session *entity.ChatSession) (int64, error) {
	if s.sessionsDown {
		return 0, errStoreDown
	}
	return s.MemoryStore.CreateSession(ctx, session)
}

func (s *flakyStore) AppendMessage(ctx context.Context, message *entity.ChatMessage) error {
	if s.appendDown {
		return errStoreDown
	}
	return s.MemoryStore.AppendMessage(ctx, message)
}

type chatFixture struct {
	svc        IChatService
	store      *flakyStore
	reconciler *conversation.Reconciler
	agent      *fakeAgent
	pub        *recordingPublisher
}

func newChatFixture(turns ITurnPublisher) *chatFixture {
	store := &flakyStore{MemoryStore: conversation.NewMemoryStore()}
	reconciler := conversation.NewReconciler(store, lock.NewMemoryLocker(lock.DefaultOptions()), database.SchemaCurrent, logger.NewNopLogger())
	agent := &fakeAgent{answer: "多喝水，早点休息。"}
	pub := &recordingPublisher{}
	bots := map[string]string{
		constant.SessionTypePhysical: "physical-bot",
		constant.SessionTypeMental:   "mental-bot",
	}
	return &chatFixture{
		svc:        NewChatService(reconciler, agent, bots, turns, pub, logger.NewNopLogger()),
		store:      store,
		reconciler: reconciler,
		agent:      agent,
		pub:        pub,
	}
}

func (f *chatFixture) messages(t *testing.T, sessionId string) []*entity.ChatMessage {
	t.Helper()
	msgs, err := f.store.ListMessages(context.Background(), uuid.MustParse(sessionId), 0)
	require.NoError(t, err)
	return msgs
}

func TestChatNewSession(t *testing.T) {
	f := newChatFixture(nil)
	userId := uuid.New()

	res, err := f.svc.Chat(context.Background(), userId, constant.SessionTypePhysical, &dto.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	require.NotNil(t, res.SessionId)
	assert.True(t, res.IsNewSession)
	assert.NotEmpty(t, res.ConversationId)
	assert.True(t, res.Persisted)
	assert.Equal(t, "hello", res.UserInput)
	assert.Equal(t, "多喝水，早点休息。", res.Response)

	msgs := f.messages(t, *res.SessionId)
	require.Len(t, msgs, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, msgs[0].Role)
	assert.Equal(t, constant.ChatMessageRoleAssistant, msgs[1].Role)
	for _, m := range msgs {
		assert.Equal(t, res.ConversationId, m.ConversationId())
	}

	req := f.agent.lastRequest()
	assert.Equal(t, res.ConversationId, req.ConversationID)
	assert.Equal(t, userId.String(), req.User)
	assert.Equal(t, []string{"physical-bot"}, f.agent.botIDs)
	assert.Equal(t, []string{events.TypeChatTurnPersisted}, f.pub.types())
}

func TestChatReusesSessionAndConversation(t *testing.T) {
	f := newChatFixture(nil)
	userId := uuid.New()
	ctx := context.Background()

	first, err := f.svc.Chat(ctx, userId, constant.SessionTypeMental, &dto.ChatRequest{Text: "睡不着"})
	require.NoError(t, err)

	second, err := f.svc.Chat(ctx, userId, constant.SessionTypeMental, &dto.ChatRequest{Text: "还是睡不着", SessionId: *first.SessionId})
	require.NoError(t, err)

	assert.False(t, second.IsNewSession)
	assert.Equal(t, *first.SessionId, *second.SessionId)
	assert.Equal(t, first.ConversationId, second.ConversationId)
	assert.Len(t, f.messages(t, *first.SessionId), 4)
	assert.Equal(t, []string{"mental-bot", "mental-bot"}, f.agent.botIDs)
}

func TestChatForeignSessionStartsFresh(t *testing.T) {
	f := newChatFixture(nil)
	ctx := context.Background()

	owner, err := f.svc.Chat(ctx, uuid.New(), constant.SessionTypePhysical, &dto.ChatRequest{Message: "hi"})
	require.NoError(t, err)

	other, err := f.svc.Chat(ctx, uuid.New(), constant.SessionTypePhysical, &dto.ChatRequest{Message: "hi", SessionId: *owner.SessionId})
	require.NoError(t, err)

	assert.True(t, other.IsNewSession)
	assert.NotEqual(t, *owner.SessionId, *other.SessionId)
	assert.NotEqual(t, owner.ConversationId, other.ConversationId)
	assert.Len(t, f.messages(t, *owner.SessionId), 2)
}

func TestChatNoAnswerIsNotPersisted(t *testing.T) {
	f := newChatFixture(nil)
	f.agent.err = chatagent.ErrNoAnswer
	userId := uuid.New()

	res, err := f.svc.Chat(context.Background(), userId, constant.SessionTypePhysical, &dto.ChatRequest{Message: "hello"})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, chatagent.ErrNoAnswer))

	sessions, err := f.store.ListSessions(context.Background(), userId, "")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Empty(t, f.messages(t, sessions[0].Id.String()))
	assert.Empty(t, f.pub.types())
}

func TestChatAgentUnavailable(t *testing.T) {
	f := newChatFixture(nil)
	f.agent.err = chatagent.ErrAgentUnavailable

	_, err := f.svc.Chat(context.Background(), uuid.New(), constant.SessionTypePhysical, &dto.ChatRequest{Message: "hello"})
	assertCode(t, err, apperror.KindAgentUnavailable, constant.ErrCodeAgentUnavailable)

	_, err = f.svc.Stream(context.Background(), uuid.New(), constant.SessionTypePhysical, &dto.ChatRequest{Message: "hello"})
	assertCode(t, err, apperror.KindAgentUnavailable, constant.ErrCodeStream)
}

func TestChatReplyDespiteAppendFailure(t *testing.T) {
	f := newChatFixture(nil)
	f.store.appendDown = true

	res, err := f.svc.Chat(context.Background(), uuid.New(), constant.SessionTypePhysical, &dto.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "多喝水，早点休息。", res.Response)
	assert.False(t, res.Persisted)
	require.NotNil(t, res.SessionId)
	assert.Empty(t, f.messages(t, *res.SessionId))
}

func TestChatStatelessWhenSessionsUnavailable(t *testing.T) {
	f := newChatFixture(nil)
	f.store.sessionsDown = true

	res, err := f.svc.Chat(context.Background(), uuid.New(), constant.SessionTypePhysical, &dto.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	assert.Nil(t, res.SessionId)
	assert.False(t, res.IsNewSession)
	assert.False(t, res.Persisted)
	assert.NotEmpty(t, res.ConversationId)
	assert.Empty(t, f.pub.types())
}

func TestChatValidation(t *testing.T) {
	f := newChatFixture(nil)
	ctx := context.Background()

	_, err := f.svc.Chat(ctx, uuid.New(), constant.SessionTypePhysical, &dto.ChatRequest{Message: "   "})
	assertCode(t, err, apperror.KindValidation, constant.ErrCodeMissingField)

	_, err = f.svc.Chat(ctx, uuid.New(), constant.SessionTypePhysical, &dto.ChatRequest{Message: "hi", SessionId: "not-a-uuid"})
	assertCode(t, err, apperror.KindValidation, constant.ErrCodeInvalidRequest)
	assert.Empty(t, f.agent.requests)
}

func TestChatStreamQueuesTurnAfterDrain(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	f := newChatFixture(NewTurnPublisher("turns", pubSub))
	f.agent.stream = "answer:先深呼吸\nnoise\nanswer:，再慢慢放松"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer := NewConsumerService(pubSub, "turns", f.reconciler, f.pub, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	stream, err := f.svc.Stream(ctx, uuid.New(), constant.SessionTypeMental, &dto.ChatRequest{Message: "好紧张"})
	require.NoError(t, err)
	require.NotNil(t, stream.SessionId)
	assert.True(t, stream.IsNewSession)
	assert.NotEmpty(t, stream.ConversationID)

	raw, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, f.agent.stream, string(raw))
	stream.Finish()
	stream.Finish()

	sessionId := stream.SessionId.String()
	assert.Eventually(t, func() bool {
		msgs, _ := f.store.ListMessages(context.Background(), uuid.MustParse(sessionId), 0)
		return len(msgs) == 2
	}, 2*time.Second, 10*time.Millisecond)

	msgs := f.messages(t, sessionId)
	assert.Equal(t, "好紧张", msgs[0].Content)
	assert.Equal(t, "先深呼吸，再慢慢放松", msgs[1].Content)
	assert.Equal(t, stream.ConversationID, msgs[1].ConversationId())
	assert.Eventually(t, func() bool {
		return len(f.pub.types()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChatStreamWithoutQueueStoresInline(t *testing.T) {
	f := newChatFixture(nil)
	f.agent.stream = "answer:ok"

	stream, err := f.svc.Stream(context.Background(), uuid.New(), constant.SessionTypePhysical, &dto.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	_, err = io.ReadAll(stream)
	require.NoError(t, err)
	stream.Finish()

	assert.Len(t, f.messages(t, stream.SessionId.String()), 2)
}

func TestChatStreamAbandonedMidwayIsNotStored(t *testing.T) {
	f := newChatFixture(nil)
	f.agent.stream = "answer:first half\nanswer: second half\n"

	stream, err := f.svc.Stream(context.Background(), uuid.New(), constant.SessionTypePhysical, &dto.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	require.NotNil(t, stream.SessionId)

	// The client goes away after the first line.
	buf := make([]byte, 19)
	n, err := io.ReadFull(stream, buf)
	require.NoError(t, err)
	require.Equal(t, 19, n)
	assert.Equal(t, "first half", stream.Answer())
	stream.Finish()

	assert.Empty(t, f.messages(t, stream.SessionId.String()))
	assert.Empty(t, f.pub.types())
}
