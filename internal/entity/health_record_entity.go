package entity

import (
	"time"

	"github.com/google/uuid"
)

type HealthRecord struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	DataType     string
	Value        string
	NumericValue *float64
	Timestamp    time.Time
	Metadata     map[string]interface{}
	CreatedAt    time.Time
}

// HealthAggregate is the per-type aggregate computed by the store for a period.
type HealthAggregate struct {
	DataType string
	Count    int64
	Average  *float64
	Min      *float64
	Max      *float64
}
