package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id           uuid.UUID      `gorm:"type:varchar(36);primaryKey"`
	Username     string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	FullName     string         `gorm:"type:varchar(255);not null"`
	Gender       *string        `gorm:"type:varchar(16)"`
	BirthDate    *time.Time     `gorm:"type:date"`
	Age          *int
	Settings     datatypes.JSON `gorm:"type:json"`
	IsActive     bool           `gorm:"not null;default:true"`
	LastLogin    *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
