package contract

import (
	"context"

	"wellmate-be/internal/entity"
	"wellmate-be/internal/repository/specification"
)

type HealthRecordRepository interface {
	Create(ctx context.Context, record *entity.HealthRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HealthRecord, error)
	// Aggregate groups by data_type and computes count/avg/min/max over numeric values.
	Aggregate(ctx context.Context, specs ...specification.Specification) ([]*entity.HealthAggregate, error)
	Delete(ctx context.Context, specs ...specification.Specification) (int64, error)
}
