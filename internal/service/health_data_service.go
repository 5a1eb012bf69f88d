// FILE: internal/service/health_data_service.go
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/entity"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/internal/repository/specification"
	"wellmate-be/internal/repository/unitofwork"
	"wellmate-be/pkg/events"

	"github.com/google/uuid"
)

const (
	healthAllTypesLimit   = 100
	healthSingleTypeLimit = 50
	healthGroupRecords    = 10
	healthTrendWindow     = 5
	healthRecentDefault   = 10
	healthRecentMax       = 100
	trendThreshold        = 0.1
)

var statsPeriodDays = map[string]int{
	constant.StatsPeriodDay:   1,
	constant.StatsPeriodWeek:  7,
	constant.StatsPeriodMonth: 30,
}

type IHealthDataService interface {
	GetHealthData(ctx context.Context, userId uuid.UUID, dataType string) (*dto.HealthDataResponse, error)
	AddHealthData(ctx context.Context, userId uuid.UUID, req *dto.AddHealthDataRequest) (*dto.AddHealthDataResponse, error)
	GetStats(ctx context.Context, userId uuid.UUID, period string) (*dto.HealthStatsResponse, error)
	GetRecent(ctx context.Context, userId uuid.UUID, limit int) (*dto.RecentHealthDataResponse, error)
	DeleteRecord(ctx context.Context, userId, recordId uuid.UUID) (*dto.DeleteHealthDataResponse, error)
	DeleteByType(ctx context.Context, userId uuid.UUID, dataType string) (*dto.DeleteHealthDataResponse, error)
}

type healthDataService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher events.Publisher
	logger         logger.ILogger
	queryTimeout   time.Duration
	now            func() time.Time
}

func NewHealthDataService(uowFactory unitofwork.RepositoryFactory, eventPublisher events.Publisher, log logger.ILogger, queryTimeout time.Duration) IHealthDataService {
	return &healthDataService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
		queryTimeout:   queryTimeout,
		now:            time.Now,
	}
}

func normalizeDataType(dataType string) (string, error) {
	dataType = strings.TrimSpace(dataType)
	if dataType == "" || dataType == constant.HealthDataTypeAll {
		return constant.HealthDataTypeAll, nil
	}
	if !constant.IsValidHealthDataType(dataType) {
		return "", apperror.Validation(constant.ErrCodeInvalidDataType, "unsupported data type: "+dataType)
	}
	return dataType, nil
}

func (s *healthDataService) GetHealthData(ctx context.Context, userId uuid.UUID, dataType string) (*dto.HealthDataResponse, error) {
	dataType, err := normalizeDataType(dataType)
	if err != nil {
		return nil, err
	}
	limit := healthSingleTypeLimit
	if dataType == constant.HealthDataTypeAll {
		limit = healthAllTypesLimit
	}

	qctx, cancel := queryContext(ctx, s.queryTimeout)
	defer cancel()
	records, err := s.uowFactory.NewUnitOfWork(ctx).HealthRecordRepository().FindAll(qctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByDataType{DataType: dataType},
		specification.OrderBy{Field: "timestamp", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "failed to load health data", err)
	}

	// Records arrive newest first and keep that order inside each group.
	grouped := make(map[string][]*entity.HealthRecord)
	for _, record := range records {
		grouped[record.DataType] = append(grouped[record.DataType], record)
	}

	healthData := make(map[string]*dto.HealthTypeGroup, len(grouped))
	for t, group := range grouped {
		shown := group
		if len(shown) > healthGroupRecords {
			shown = shown[:healthGroupRecords]
		}
		healthData[t] = &dto.HealthTypeGroup{
			Records: toHealthRecordResponses(shown),
			Stats:   summarize(group),
		}
	}

	return &dto.HealthDataResponse{
		UUID:       userId.String(),
		DataType:   dataType,
		HealthData: healthData,
	}, nil
}

func (s *healthDataService) AddHealthData(ctx context.Context, userId uuid.UUID, req *dto.AddHealthDataRequest) (*dto.AddHealthDataResponse, error) {
	// 1. Validate type and value
	dataType := strings.TrimSpace(req.DataType)
	if dataType == "" {
		return nil, apperror.MissingField("data_type")
	}
	if !constant.IsValidHealthDataType(dataType) {
		return nil, apperror.Validation(constant.ErrCodeInvalidDataType, "unsupported data type: "+dataType)
	}
	value := stringifyValue(req.Value)
	if value == "" {
		return nil, apperror.MissingField("value")
	}

	// 2. Build record
	timestamp := s.now()
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}
	record := &entity.HealthRecord{
		Id:           uuid.New(),
		UserId:       userId,
		DataType:     dataType,
		Value:        value,
		NumericValue: parseNumeric(value),
		Timestamp:    timestamp,
		Metadata:     req.Metadata,
	}

	// 3. Save
	qctx, cancel := queryContext(ctx, s.queryTimeout)
	err := s.uowFactory.NewUnitOfWork(ctx).HealthRecordRepository().Create(qctx, record)
	cancel()
	if err != nil {
		s.logger.Error("HealthDataService", "Failed to add health data", map[string]interface{}{
			"user_id":   userId.String(),
			"data_type": dataType,
			"error":     err.Error(),
		})
		return nil, apperror.Persistence(constant.ErrCodeAddFailed, "failed to add health data", err)
	}

	s.publish(ctx, events.HealthDataAdded(userId.String(), record.Id.String(), dataType, value))

	return &dto.AddHealthDataResponse{
		UUID:     userId.String(),
		RecordId: record.Id.String(),
		DataType: dataType,
		Value:    req.Value,
	}, nil
}

func (s *healthDataService) GetStats(ctx context.Context, userId uuid.UUID, period string) (*dto.HealthStatsResponse, error) {
	if period == "" {
		period = constant.StatsPeriodWeek
	}
	days, ok := statsPeriodDays[period]
	if !ok {
		return nil, apperror.Validation(constant.ErrCodeInvalidPeriod, "period must be one of day, week, month")
	}

	end := s.now()
	start := end.AddDate(0, 0, -days)
	repo := s.uowFactory.NewUnitOfWork(ctx).HealthRecordRepository()

	// 1. Aggregate within the period
	aggCtx, cancel := queryContext(ctx, s.queryTimeout)
	aggregates, err := repo.Aggregate(aggCtx,
		specification.UserOwnedBy{UserID: userId},
		specification.TimestampSince{Since: start},
	)
	cancel()
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "failed to compute health stats", err)
	}

	// 2. Latest value and trend come from the newest records overall
	stats := make(map[string]*dto.HealthTypeStats, len(aggregates))
	for _, agg := range aggregates {
		typeStats := &dto.HealthTypeStats{
			Count:   agg.Count,
			Average: agg.Average,
			Min:     agg.Min,
			Max:     agg.Max,
			Trend:   constant.TrendNoData,
		}

		trendCtx, cancel := queryContext(ctx, s.queryTimeout)
		newest, err := repo.FindAll(trendCtx,
			specification.UserOwnedBy{UserID: userId},
			specification.ByDataType{DataType: agg.DataType},
			specification.OrderBy{Field: "timestamp", Desc: true},
			specification.Pagination{Limit: healthTrendWindow},
		)
		cancel()
		if err != nil {
			s.logger.Warn("HealthDataService", "Failed to load trend window", map[string]interface{}{
				"data_type": agg.DataType,
				"error":     err.Error(),
			})
		} else {
			values := numericValues(newest)
			if len(values) > 0 {
				latest := values[0]
				typeStats.Latest = &latest
			}
			typeStats.Trend = CalculateTrend(reversed(values))
		}
		stats[agg.DataType] = typeStats
	}

	return &dto.HealthStatsResponse{
		UUID:      userId.String(),
		Period:    period,
		StartDate: start,
		EndDate:   end,
		Stats:     stats,
	}, nil
}

func (s *healthDataService) GetRecent(ctx context.Context, userId uuid.UUID, limit int) (*dto.RecentHealthDataResponse, error) {
	if limit <= 0 {
		limit = healthRecentDefault
	}
	if limit > healthRecentMax {
		limit = healthRecentMax
	}

	qctx, cancel := queryContext(ctx, s.queryTimeout)
	defer cancel()
	records, err := s.uowFactory.NewUnitOfWork(ctx).HealthRecordRepository().FindAll(qctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "timestamp", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "failed to load recent health data", err)
	}

	return &dto.RecentHealthDataResponse{
		UUID:    userId.String(),
		Records: toHealthRecordResponses(records),
	}, nil
}

func (s *healthDataService) DeleteRecord(ctx context.Context, userId, recordId uuid.UUID) (*dto.DeleteHealthDataResponse, error) {
	qctx, cancel := queryContext(ctx, s.queryTimeout)
	deleted, err := s.uowFactory.NewUnitOfWork(ctx).HealthRecordRepository().Delete(qctx,
		specification.ByID{ID: recordId},
		specification.UserOwnedBy{UserID: userId},
	)
	cancel()
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "failed to delete health record", err)
	}
	if deleted == 0 {
		return nil, apperror.NotFound(constant.ErrCodeRecordNotFound, "health record not found")
	}

	s.publish(ctx, events.HealthDataDeleted(userId.String(), deleted))
	return &dto.DeleteHealthDataResponse{DeletedCount: deleted}, nil
}

// DeleteByType removes every record of dataType, or all of the user's records
// for "all" and "".
func (s *healthDataService) DeleteByType(ctx context.Context, userId uuid.UUID, dataType string) (*dto.DeleteHealthDataResponse, error) {
	dataType, err := normalizeDataType(dataType)
	if err != nil {
		return nil, err
	}

	qctx, cancel := queryContext(ctx, s.queryTimeout)
	deleted, err := s.uowFactory.NewUnitOfWork(ctx).HealthRecordRepository().Delete(qctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByDataType{DataType: dataType},
	)
	cancel()
	if err != nil {
		return nil, apperror.Persistence(constant.ErrCodeInternal, "failed to delete health data", err)
	}

	if deleted > 0 {
		s.publish(ctx, events.HealthDataDeleted(userId.String(), deleted))
	}
	return &dto.DeleteHealthDataResponse{DeletedCount: deleted}, nil
}

func (s *healthDataService) publish(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("HealthDataService", "Failed to publish event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
	}
}

// CalculateTrend fits a least-squares line through values, oldest first.
func CalculateTrend(values []float64) string {
	n := float64(len(values))
	if len(values) < 2 {
		return constant.TrendNoData
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return constant.TrendStable
	}
	slope := (n*sumXY - sumX*sumY) / denominator

	switch {
	case slope > trendThreshold:
		return constant.TrendIncreasing
	case slope < -trendThreshold:
		return constant.TrendDecreasing
	default:
		return constant.TrendStable
	}
}

func stringifyValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}

// parseNumeric reads the leading number, so "120/80" yields 120.
func parseNumeric(value string) *float64 {
	head, _, _ := strings.Cut(value, "/")
	f, err := strconv.ParseFloat(strings.TrimSpace(head), 64)
	if err != nil {
		return nil
	}
	return &f
}

func numericValues(records []*entity.HealthRecord) []float64 {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if r.NumericValue != nil {
			values = append(values, *r.NumericValue)
		}
	}
	return values
}

func reversed(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[len(values)-1-i] = v
	}
	return out
}

func summarize(records []*entity.HealthRecord) dto.HealthSummaryStats {
	stats := dto.HealthSummaryStats{Count: len(records)}
	values := numericValues(records)
	if len(values) == 0 {
		return stats
	}

	latest, minV, maxV, sum := values[0], values[0], values[0], 0.0
	for _, v := range values {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	avg := sum / float64(len(values))

	stats.Latest = &latest
	stats.Average = &avg
	stats.Min = &minV
	stats.Max = &maxV
	return stats
}

func toHealthRecordResponses(records []*entity.HealthRecord) []*dto.HealthRecordResponse {
	out := make([]*dto.HealthRecordResponse, len(records))
	for i, r := range records {
		out[i] = &dto.HealthRecordResponse{
			Id:        r.Id.String(),
			DataType:  r.DataType,
			Value:     r.Value,
			Timestamp: r.Timestamp,
			Metadata:  r.Metadata,
		}
	}
	return out
}
