package serverutils

// ApiResponse is the {success, data} envelope the API layer speaks.
type ApiResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

type ErrorBody struct {
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

type ApiErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

func SuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message, code string, details interface{}) ApiErrorResponse {
	return ApiErrorResponse{
		Success: false,
		Error: ErrorBody{
			Message: message,
			Code:    code,
			Details: details,
		},
	}
}
