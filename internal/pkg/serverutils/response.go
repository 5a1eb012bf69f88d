package serverutils

const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

type Response[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type ErrorBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

func SuccessResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{Status: StatusSuccess, Message: message, Data: data}
}

// WarningResponse is a 200 with no data: the request was fine but produced nothing usable.
func WarningResponse(message string) *Response[any] {
	return &Response[any]{Status: StatusWarning, Message: message, Data: nil}
}

func ErrorResponse(code, message string) *ErrorBody {
	return &ErrorBody{Status: StatusError, Message: message, ErrorCode: code}
}
