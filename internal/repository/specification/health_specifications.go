package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByDataType is a no-op for "" and "all".
type ByDataType struct {
	DataType string
}

func (s ByDataType) Apply(db *gorm.DB) *gorm.DB {
	if s.DataType == "" || s.DataType == "all" {
		return db
	}
	return db.Where("data_type = ?", s.DataType)
}

type TimestampSince struct {
	Since time.Time
}

func (s TimestampSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("timestamp >= ?", s.Since)
}
