package service

import (
	"context"

	"github.com/cardsite/backend/internal/model"
)

// ContactService defines the business logic for contact exchange submissions.
type ContactService interface {
	// Submit validates sub, uploads its photo when present and persists one
	// record. Errors are *ValidationError, ErrServiceUnavailable or wrap
	// ErrPersistence. A failed photo upload is reported in the result, not as
	// an error.
	Submit(ctx context.Context, sub model.ContactSubmission) (model.ContactResult, error)
}
