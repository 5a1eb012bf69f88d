package conversation

import (
	"context"
	"time"

	"wellmate-be/internal/entity"
	"wellmate-be/internal/repository/specification"
	"wellmate-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// UnitOfWorkStore adapts the gorm repositories to Store. Every call gets its
// own deadline so a stuck database surfaces as an ordinary error.
type UnitOfWorkStore struct {
	uowFactory unitofwork.RepositoryFactory
	timeout    time.Duration
}

var _ Store = (*UnitOfWorkStore)(nil)

func NewUnitOfWorkStore(uowFactory unitofwork.RepositoryFactory, timeout time.Duration) *UnitOfWorkStore {
	return &UnitOfWorkStore{uowFactory: uowFactory, timeout: timeout}
}

func (s *UnitOfWorkStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *UnitOfWorkStore) FindSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ActiveSessions{},
	)
}

func (s *UnitOfWorkStore) CreateSession(ctx context.Context, session *entity.ChatSession) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatSessionRepository().Create(ctx, session)
}

func (s *UnitOfWorkStore) AssignConversationId(ctx context.Context, sessionID uuid.UUID, conversationID string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatSessionRepository().AssignConversationId(ctx, sessionID, conversationID)
}

func (s *UnitOfWorkStore) LatestMessageWithMetadata(ctx context.Context, sessionID uuid.UUID) (*entity.ChatMessage, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatMessageRepository().FindOne(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.WithMetadata{},
		specification.OrderBy{Field: "timestamp", Desc: true},
	)
}

func (s *UnitOfWorkStore) AppendMessage(ctx context.Context, message *entity.ChatMessage) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatMessageRepository().Create(ctx, message)
}

func (s *UnitOfWorkStore) TouchSession(ctx context.Context, sessionID uuid.UUID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatSessionRepository().Touch(ctx, sessionID)
}

func (s *UnitOfWorkStore) ListSessions(ctx context.Context, userID uuid.UUID, sessionType string) ([]*entity.ChatSession, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.ActiveSessions{},
		specification.BySessionType{SessionType: sessionType},
	)
}

func (s *UnitOfWorkStore) ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: "timestamp"},
		specification.Pagination{Limit: limit},
	)
}

func (s *UnitOfWorkStore) CountMessages(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatMessageRepository().Count(ctx, specification.BySessionID{SessionID: sessionID})
}

func (s *UnitOfWorkStore) UpdateTitle(ctx context.Context, sessionID uuid.UUID, title string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatSessionRepository().UpdateTitle(ctx, sessionID, title)
}

func (s *UnitOfWorkStore) CloseSession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.uowFactory.NewUnitOfWork(ctx).ChatSessionRepository().Deactivate(ctx, sessionID)
}
