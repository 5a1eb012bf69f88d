package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ActiveSessions hides closed sessions.
type ActiveSessions struct{}

func (s ActiveSessions) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// BySessionType is a no-op for an empty type.
type BySessionType struct {
	SessionType string
}

func (s BySessionType) Apply(db *gorm.DB) *gorm.DB {
	if s.SessionType == "" {
		return db
	}
	return db.Where("session_type = ?", s.SessionType)
}

type WithMetadata struct{}

func (s WithMetadata) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("metadata IS NOT NULL")
}
