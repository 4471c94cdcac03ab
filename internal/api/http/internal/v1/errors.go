package v1

// Machine-readable error codes returned in the error envelope.
const (
	CodeEmailExists       = "EMAIL_EXISTS"
	CodeUsernameTaken     = "USERNAME_TAKEN"
	CodeInvalidCode       = "INVALID_CODE"
	CodeExpired           = "CODE_EXPIRED"
	CodeTooManyAttempts   = "TOO_MANY_ATTEMPTS"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeEmailNotVerified  = "EMAIL_NOT_VERIFIED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeMissingToken      = "MISSING_TOKEN"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotImplemented    = "NOT_IMPLEMENTED"
	CodeInternalError     = "INTERNAL_ERROR"
)

type ErrorStruct struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details []ValidationError `json:"details"`
} // @name ValidationErrorStruct

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
