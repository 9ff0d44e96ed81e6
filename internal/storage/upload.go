package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cardsite/backend/pkg/notion"
	"github.com/google/uuid"
)

// UploadState はアップロードセッションの状態。前方向にのみ遷移する。
type UploadState int

const (
	UploadPending UploadState = iota
	UploadDeclared
	UploadSent
	UploadReferenced
	UploadFailed
)

func (s UploadState) String() string {
	switch s {
	case UploadPending:
		return "pending"
	case UploadDeclared:
		return "declared"
	case UploadSent:
		return "sent"
	case UploadReferenced:
		return "referenced"
	case UploadFailed:
		return "failed"
	default:
		return fmt.Sprintf("UploadState(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when a step is run out of order.
var ErrInvalidTransition = errors.New("storage: invalid upload state transition")

// UploadSession ties one photo buffer to one external upload handle for the
// duration of declare → transfer → reference. The bytes are never kept after
// the session ends.
type UploadSession struct {
	Filename    string
	ContentType string

	data   []byte
	handle string
	state  UploadState
	reason error
	ref    notion.FileUploadRef
}

// NewUploadSession starts a session in the Pending state.
func NewUploadSession(filename, contentType string, data []byte) *UploadSession {
	return &UploadSession{Filename: filename, ContentType: contentType, data: data}
}

func (s *UploadSession) State() UploadState { return s.state }

// Handle is the identifier returned by Declare; empty before that.
func (s *UploadSession) Handle() string { return s.handle }

// Reason is the failure cause once the session is Failed.
func (s *UploadSession) Reason() error { return s.reason }

// Reference returns the file reference; ok is false unless Referenced.
func (s *UploadSession) Reference() (notion.FileUploadRef, bool) {
	return s.ref, s.state == UploadReferenced
}

// Fail moves the session to the terminal Failed state.
func (s *UploadSession) Fail(reason error) {
	if s.state == UploadFailed || s.state == UploadReferenced {
		return
	}
	s.state = UploadFailed
	s.reason = reason
	s.data = nil
}

// Declare asks the store for an upload handle sized to the exact buffer.
func (s *UploadSession) Declare(ctx context.Context, store ObjectStore) error {
	if s.state != UploadPending {
		return ErrInvalidTransition
	}
	handle, err := store.Declare(ctx, s.Filename, int64(len(s.data)))
	if err != nil {
		s.Fail(fmt.Errorf("upload creation failed: %w", err))
		return s.reason
	}
	if handle == "" {
		s.Fail(errors.New("upload creation failed: empty handle"))
		return s.reason
	}
	s.handle = handle
	s.state = UploadDeclared
	return nil
}

// Transfer sends the buffer to the declared handle.
func (s *UploadSession) Transfer(ctx context.Context, store ObjectStore) error {
	if s.state != UploadDeclared {
		return ErrInvalidTransition
	}
	if err := store.Transfer(ctx, s.handle, s.Filename, s.ContentType, bytes.NewReader(s.data)); err != nil {
		s.Fail(fmt.Errorf("file send failed: %w", err))
		return s.reason
	}
	s.state = UploadSent
	s.data = nil
	return nil
}

// Refer builds the file reference for the sent upload. No network call.
func (s *UploadSession) Refer() (notion.FileUploadRef, error) {
	if s.state != UploadSent {
		return notion.FileUploadRef{}, ErrInvalidTransition
	}
	s.ref = notion.NewFileUploadRef(s.Filename, s.handle)
	s.state = UploadReferenced
	return s.ref, nil
}

// Run drives a Pending session through every step, stopping at the first
// failure. Declare and Transfer record their own failure. The returned state
// is either Referenced or Failed; a session that was not Pending is returned
// unchanged.
func (s *UploadSession) Run(ctx context.Context, store ObjectStore) UploadState {
	if s.Declare(ctx, store) != nil || s.Transfer(ctx, store) != nil {
		return s.state
	}
	_, _ = s.Refer()
	return s.state
}

// NewFilename returns selfie-<timestamp>-<suffix><ext> where the timestamp is
// ISO-8601 with ':' and '.' replaced by '-'.
func NewFilename(now time.Time, ext string) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "selfie-" + ts + "-" + suffix + ext
}
