package service

import "errors"

// User-facing validation messages.
const (
	MsgNameRequired          = "Name is required"
	MsgContactMethodRequired = "At least one connection method is required (email, phone, Twitter, or LinkedIn)"
	MsgActionRequired        = "Action is required"
)

// ValidationError reports caller input that cannot be accepted. Message
// names the constraint that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	// ErrServiceUnavailable means the external database credential is absent.
	ErrServiceUnavailable = errors.New("contact service not available")

	// ErrPersistence wraps a failed write of the contact record.
	ErrPersistence = errors.New("contact record not saved")
)
