package implementation

import (
	"context"
	"errors"
	"time"

	"wellmate-be/internal/entity"
	"wellmate-be/internal/mapper"
	"wellmate-be/internal/model"
	"wellmate-be/internal/repository/contract"
	"wellmate-be/internal/repository/scope"
	"wellmate-be/internal/repository/specification"
	"wellmate-be/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const conversationIdColumn = "conversation_id"

var ErrConversationColumnMissing = errors.New("chat_sessions has no conversation_id column")

type ChatSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
	schema database.SchemaVersion
}

func NewChatSessionRepository(db *gorm.DB, schema database.SchemaVersion) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
		schema: schema,
	}
}

// base drops the conversation_id column from inserts and selects on legacy schemas.
func (r *ChatSessionRepositoryImpl) base(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if !r.schema.HasConversationColumn() {
		db = db.Omit(conversationIdColumn)
	}
	return db
}

func (r *ChatSessionRepositoryImpl) Create(ctx context.Context, session *entity.ChatSession) (int64, error) {
	m := r.mapper.ChatSessionToModel(session)
	res := r.base(ctx).Create(m)
	if res.Error != nil {
		return 0, res.Error
	}
	*session = *r.mapper.ChatSessionToEntity(m)
	return res.RowsAffected, nil
}

func (r *ChatSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	var m model.ChatSession
	query := applySpecifications(r.base(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatSessionToEntity(&m), nil
}

func (r *ChatSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var models []*model.ChatSession
	query := applySpecifications(r.base(ctx).Scopes(scope.OrderByUpdatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatSessionToEntity(m)
	}
	return entities, nil
}

func (r *ChatSessionRepositoryImpl) AssignConversationId(ctx context.Context, id uuid.UUID, conversationId string) (int64, error) {
	if !r.schema.HasConversationColumn() {
		return 0, ErrConversationColumnMissing
	}
	res := r.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ? AND (conversation_id IS NULL OR conversation_id = '')", id).
		Updates(map[string]interface{}{
			conversationIdColumn: conversationId,
			"updated_at":         time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *ChatSessionRepositoryImpl) UpdateTitle(ctx context.Context, id uuid.UUID, title string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *ChatSessionRepositoryImpl) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", time.Now()).Error
}

func (r *ChatSessionRepositoryImpl) Deactivate(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *ChatSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.ChatSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
