package implementation

import (
	"context"

	"wellmate-be/internal/entity"
	"wellmate-be/internal/mapper"
	"wellmate-be/internal/model"
	"wellmate-be/internal/repository/contract"
	"wellmate-be/internal/repository/specification"

	"gorm.io/gorm"
)

type HealthRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.HealthMapper
}

func NewHealthRecordRepository(db *gorm.DB) contract.HealthRecordRepository {
	return &HealthRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewHealthMapper(),
	}
}

func (r *HealthRecordRepositoryImpl) Create(ctx context.Context, record *entity.HealthRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *HealthRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HealthRecord, error) {
	var models []*model.HealthRecord
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

type healthAggregateRow struct {
	DataType string
	Count    int64
	AvgValue *float64
	MinValue *float64
	MaxValue *float64
}

func (r *HealthRecordRepositoryImpl) Aggregate(ctx context.Context, specs ...specification.Specification) ([]*entity.HealthAggregate, error) {
	var rows []healthAggregateRow
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.HealthRecord{}), specs...)
	err := query.
		Select("data_type, COUNT(*) AS count, AVG(numeric_value) AS avg_value, MIN(numeric_value) AS min_value, MAX(numeric_value) AS max_value").
		Group("data_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entity.HealthAggregate, len(rows))
	for i, row := range rows {
		out[i] = &entity.HealthAggregate{
			DataType: row.DataType,
			Count:    row.Count,
			Average:  row.AvgValue,
			Min:      row.MinValue,
			Max:      row.MaxValue,
		}
	}
	return out, nil
}

func (r *HealthRecordRepositoryImpl) Delete(ctx context.Context, specs ...specification.Specification) (int64, error) {
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	res := query.Delete(&model.HealthRecord{})
	return res.RowsAffected, res.Error
}
