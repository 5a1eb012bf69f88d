package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"wellmate-be/internal/entity"

	"github.com/google/uuid"
)

// MemoryStore is a process-local Store with the same semantics as the gorm
// adapter. It backs unit tests and local runs without a database.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.ChatSession
	messages map[uuid.UUID][]*entity.ChatMessage
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*entity.ChatSession),
		messages: make(map[uuid.UUID][]*entity.ChatMessage),
	}
}

func cloneSession(s *entity.ChatSession) *entity.ChatSession {
	c := *s
	if s.ConversationId != nil {
		id := *s.ConversationId
		c.ConversationId = &id
	}
	return &c
}

func cloneMessage(m *entity.ChatMessage) *entity.ChatMessage {
	c := *m
	if m.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func (s *MemoryStore) FindSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || !session.IsActive {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (s *MemoryStore) CreateSession(ctx context.Context, session *entity.ChatSession) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.Id]; exists {
		return 0, nil
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	s.sessions[session.Id] = cloneSession(session)
	return 1, nil
}

func (s *MemoryStore) AssignConversationId(ctx context.Context, sessionID uuid.UUID, conversationID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.HasConversationId() {
		return 0, nil
	}
	id := conversationID
	session.ConversationId = &id
	session.UpdatedAt = time.Now()
	return 1, nil
}

func (s *MemoryStore) LatestMessageWithMetadata(ctx context.Context, sessionID uuid.UUID) (*entity.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *entity.ChatMessage
	for _, m := range s.messages[sessionID] {
		if m.Metadata == nil {
			continue
		}
		if latest == nil || !m.Timestamp.Before(latest.Timestamp) {
			latest = m
		}
	}
	if latest == nil {
		return nil, nil
	}
	return cloneMessage(latest), nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, message *entity.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[message.SessionId] = append(s.messages[message.SessionId], cloneMessage(message))
	return nil
}

func (s *MemoryStore) TouchSession(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		session.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MemoryStore) ListSessions(ctx context.Context, userID uuid.UUID, sessionType string) ([]*entity.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.ChatSession
	for _, session := range s.sessions {
		if session.UserId != userID || !session.IsActive {
			continue
		}
		if sessionType != "" && session.SessionType != sessionType {
			continue
		}
		out = append(out, cloneSession(session))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]*entity.ChatMessage, 0, len(s.messages[sessionID]))
	for _, m := range s.messages[sessionID] {
		msgs = append(msgs, cloneMessage(m))
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (s *MemoryStore) CountMessages(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.messages[sessionID])), nil
}

func (s *MemoryStore) UpdateTitle(ctx context.Context, sessionID uuid.UUID, title string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return 0, nil
	}
	session.Title = title
	session.UpdatedAt = time.Now()
	return 1, nil
}

func (s *MemoryStore) CloseSession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return 0, nil
	}
	session.IsActive = false
	session.UpdatedAt = time.Now()
	return 1, nil
}
