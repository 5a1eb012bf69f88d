// FILE: internal/dto/user_dto.go
package dto

import "time"

type UserProfileResponse struct {
	UUID      string                 `json:"uuid"`
	Username  string                 `json:"username"`
	FullName  string                 `json:"full_name"`
	Gender    *string                `json:"gender"`
	BirthDate *string                `json:"birth_date"`
	Age       *int                   `json:"age"`
	Settings  map[string]interface{} `json:"settings"`
	IsActive  bool                   `json:"is_active"`
	LastLogin *time.Time             `json:"last_login"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type UpdateSettingsResponse struct {
	UUID            string                 `json:"uuid"`
	Username        string                 `json:"username"`
	UpdatedSettings map[string]interface{} `json:"updated_settings"`
}
