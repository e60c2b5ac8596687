package domain

// ValidationError marks input the caller can correct. Transports map it to a
// client error rather than an internal failure.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func NewValidationError(msg string) error {
	return &ValidationError{msg: msg}
}
