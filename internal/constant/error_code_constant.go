package constant

// Error codes returned in the error envelope.
const (
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeMissingToken        = "MISSING_TOKEN"
	ErrCodeInvalidTokenFormat  = "INVALID_TOKEN_FORMAT"
	ErrCodeInvalidToken        = "INVALID_TOKEN"
	ErrCodeInvalidTokenType    = "INVALID_TOKEN_TYPE"
	ErrCodeUserAlreadyExists   = "USER_ALREADY_EXISTS"
	ErrCodeAuthFailed          = "AUTHENTICATION_FAILED"
	ErrCodeAccountInactive     = "ACCOUNT_INACTIVE"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeSessionNotFound     = "SESSION_NOT_FOUND"
	ErrCodeRecordNotFound      = "RECORD_NOT_FOUND"
	ErrCodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeStream              = "STREAM_ERROR"
	ErrCodeAgentUnavailable    = "AGENT_UNAVAILABLE"
	ErrCodeInvalidDataType     = "INVALID_DATA_TYPE"
	ErrCodeInvalidPeriod       = "INVALID_PERIOD"
	ErrCodeAddFailed           = "ADD_FAILED"
	ErrCodeUpdateFailed        = "UPDATE_FAILED"
	ErrCodeMultimodal          = "MULTIMODAL_UNAVAILABLE"
)
