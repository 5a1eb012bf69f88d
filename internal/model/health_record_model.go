package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type HealthRecord struct {
	Id           uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	UserId       uuid.UUID `gorm:"type:varchar(36);not null;index:idx_health_data_user_type_ts,priority:1"`
	DataType     string    `gorm:"type:varchar(32);not null;index:idx_health_data_user_type_ts,priority:2"`
	Value        string    `gorm:"type:varchar(64);not null"`
	NumericValue *float64
	Timestamp    time.Time      `gorm:"not null;index:idx_health_data_user_type_ts,priority:3"`
	Metadata     datatypes.JSON `gorm:"type:json"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (HealthRecord) TableName() string {
	return "health_data"
}
