package models

// Error codes returned in ErrorResponse.Code.
const (
	ErrCodeBadRequest   = 40001
	ErrCodeValidation   = 40002
	ErrCodeUnauthorized = 40101
	ErrCodeConflict     = 40901
	ErrCodeTooManyReqs  = 42901
	ErrCodeInternal     = 50001
)

// ErrorResponse is the standard JSON body for failed requests.
type ErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
