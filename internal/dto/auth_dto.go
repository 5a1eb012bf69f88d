// FILE: internal/dto/auth_dto.go
package dto

type RegisterRequest struct {
	Username  string  `json:"username" validate:"required,min=3,max=64"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	FullName  string  `json:"full_name" validate:"required,max=100"`
	Gender    *string `json:"gender" validate:"omitempty,oneof=male female other"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Age       *int    `json:"age" validate:"omitempty,min=0,max=150"`
}

type RegisterResponse struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by both login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	UUID         string `json:"uuid"`
	Username     string `json:"username"`
	FullName     string `json:"full_name,omitempty"`
}
