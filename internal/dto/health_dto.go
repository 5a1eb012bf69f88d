package dto

import "time"

type AddHealthDataRequest struct {
	DataType  string                 `json:"data_type" validate:"required"`
	Value     interface{}            `json:"value" validate:"required"`
	Timestamp *time.Time             `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type AddHealthDataResponse struct {
	UUID     string      `json:"uuid"`
	RecordId string      `json:"record_id"`
	DataType string      `json:"data_type"`
	Value    interface{} `json:"value"`
}

type HealthRecordResponse struct {
	Id        string                 `json:"id"`
	DataType  string                 `json:"data_type"`
	Value     string                 `json:"value"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type HealthSummaryStats struct {
	Count   int      `json:"count"`
	Latest  *float64 `json:"latest"`
	Average *float64 `json:"average"`
	Max     *float64 `json:"max"`
	Min     *float64 `json:"min"`
}

// HealthTypeGroup is one data type's slice of a GET /health/data response.
type HealthTypeGroup struct {
	Records []*HealthRecordResponse `json:"records"`
	Stats   HealthSummaryStats      `json:"stats"`
}

type HealthDataResponse struct {
	UUID       string                      `json:"uuid"`
	DataType   string                      `json:"data_type"`
	HealthData map[string]*HealthTypeGroup `json:"health_data"`
}

type HealthTypeStats struct {
	Count   int64    `json:"count"`
	Average *float64 `json:"average"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Latest  *float64 `json:"latest"`
	Trend   string   `json:"trend"`
}

type HealthStatsResponse struct {
	UUID      string                      `json:"uuid"`
	Period    string                      `json:"period"`
	StartDate time.Time                   `json:"start_date"`
	EndDate   time.Time                   `json:"end_date"`
	Stats     map[string]*HealthTypeStats `json:"stats"`
}

type RecentHealthDataResponse struct {
	UUID    string                  `json:"uuid"`
	Records []*HealthRecordResponse `json:"records"`
}

type DeleteHealthDataResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}
