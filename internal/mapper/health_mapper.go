package mapper

import (
	"wellmate-be/internal/entity"
	"wellmate-be/internal/model"
)

type HealthMapper struct{}

func NewHealthMapper() *HealthMapper {
	return &HealthMapper{}
}

func (m *HealthMapper) ToEntity(r *model.HealthRecord) *entity.HealthRecord {
	if r == nil {
		return nil
	}
	return &entity.HealthRecord{
		Id:           r.Id,
		UserId:       r.UserId,
		DataType:     r.DataType,
		Value:        r.Value,
		NumericValue: r.NumericValue,
		Timestamp:    r.Timestamp,
		Metadata:     jsonToMap(r.Metadata),
		CreatedAt:    r.CreatedAt,
	}
}

func (m *HealthMapper) ToModel(r *entity.HealthRecord) *model.HealthRecord {
	if r == nil {
		return nil
	}
	return &model.HealthRecord{
		Id:           r.Id,
		UserId:       r.UserId,
		DataType:     r.DataType,
		Value:        r.Value,
		NumericValue: r.NumericValue,
		Timestamp:    r.Timestamp,
		Metadata:     mapToJSON(r.Metadata),
		CreatedAt:    r.CreatedAt,
	}
}

func (m *HealthMapper) ToEntities(records []*model.HealthRecord) []*entity.HealthRecord {
	entities := make([]*entity.HealthRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
