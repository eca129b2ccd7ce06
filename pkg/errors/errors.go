package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Code extracts the error code, or returns empty when err is not an AppError.
func Code(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ""
}

var (
	ErrConfigLoad      = "CONFIG_LOAD_ERROR"
	ErrDatabaseConnect = "DATABASE_CONNECT_ERROR"
	ErrInvalidInput    = "INVALID_INPUT_ERROR"
	ErrCooldownActive  = "COOLDOWN_ACTIVE"
	ErrPersistence     = "PERSISTENCE_ERROR"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrEmailTaken      = "EMAIL_TAKEN_ERROR"
	ErrInvalidLogin    = "INVALID_CREDENTIALS_ERROR"
	ErrNotFound        = "NOT_FOUND_ERROR"
	ErrTxSubmit        = "TX_SUBMIT_ERROR"
)
