package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	calls       []string
	handle      string
	declareErr  error
	transferErr error

	declaredName string
	declaredSize int64
	sentHandle   string
	sentType     string
	sentData     []byte
}

func (f *fakeStore) Declare(ctx context.Context, filename string, size int64) (string, error) {
	f.calls = append(f.calls, "declare")
	f.declaredName, f.declaredSize = filename, size
	if f.declareErr != nil {
		return "", f.declareErr
	}
	return f.handle, nil
}

func (f *fakeStore) Transfer(ctx context.Context, handle, filename, contentType string, data io.Reader) error {
	f.calls = append(f.calls, "transfer")
	f.sentHandle, f.sentType = handle, contentType
	f.sentData, _ = io.ReadAll(data)
	return f.transferErr
}

func TestUploadSession_RunSuccess(t *testing.T) {
	store := &fakeStore{handle: "fu-1"}
	s := NewUploadSession("selfie.png", "image/png", []byte("12345"))

	state := s.Run(context.Background(), store)

	require.Equal(t, UploadReferenced, state)
	assert.Equal(t, []string{"declare", "transfer"}, store.calls)
	assert.Equal(t, "selfie.png", store.declaredName)
	assert.Equal(t, int64(5), store.declaredSize)
	assert.Equal(t, "fu-1", store.sentHandle)
	assert.Equal(t, "image/png", store.sentType)
	assert.Equal(t, "12345", string(store.sentData))

	ref, ok := s.Reference()
	require.True(t, ok)
	assert.Equal(t, "fu-1", ref.FileUpload.ID)
	assert.Equal(t, "file_upload", ref.Type)
	assert.Equal(t, "selfie.png", ref.Name)
	assert.NoError(t, s.Reason())
}

func TestUploadSession_DeclareFailureShortCircuits(t *testing.T) {
	store := &fakeStore{declareErr: errors.New("429 rate limited")}
	s := NewUploadSession("selfie.png", "image/png", []byte("x"))

	state := s.Run(context.Background(), store)

	assert.Equal(t, UploadFailed, state)
	assert.Equal(t, []string{"declare"}, store.calls)
	require.Error(t, s.Reason())
	assert.Contains(t, s.Reason().Error(), "upload creation failed")
	assert.Contains(t, s.Reason().Error(), "429 rate limited")
	_, ok := s.Reference()
	assert.False(t, ok)
}

func TestUploadSession_EmptyHandleFails(t *testing.T) {
	store := &fakeStore{}
	s := NewUploadSession("selfie.png", "image/png", []byte("x"))

	assert.Equal(t, UploadFailed, s.Run(context.Background(), store))
	assert.Equal(t, []string{"declare"}, store.calls)
}

func TestUploadSession_TransferFailure(t *testing.T) {
	store := &fakeStore{handle: "fu-1", transferErr: errors.New("500 Internal Server Error")}
	s := NewUploadSession("selfie.png", "image/png", []byte("x"))

	state := s.Run(context.Background(), store)

	assert.Equal(t, UploadFailed, state)
	assert.Equal(t, []string{"declare", "transfer"}, store.calls)
	assert.Contains(t, s.Reason().Error(), "file send failed")
	assert.Equal(t, "fu-1", s.Handle())
}

func TestUploadSession_OnlyForwardTransitions(t *testing.T) {
	store := &fakeStore{handle: "fu-1"}
	s := NewUploadSession("selfie.png", "image/png", []byte("x"))

	assert.ErrorIs(t, s.Transfer(context.Background(), store), ErrInvalidTransition)
	_, err := s.Refer()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, store.calls)

	require.NoError(t, s.Declare(context.Background(), store))
	assert.ErrorIs(t, s.Declare(context.Background(), store), ErrInvalidTransition)
	assert.Equal(t, UploadDeclared, s.State())

	require.NoError(t, s.Transfer(context.Background(), store))
	_, err = s.Refer()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Transfer(context.Background(), store), ErrInvalidTransition)

	s.Fail(errors.New("late"))
	assert.Equal(t, UploadReferenced, s.State())
}

func TestUploadSession_FailedIsTerminal(t *testing.T) {
	store := &fakeStore{handle: "fu-1"}
	s := NewUploadSession("selfie.png", "image/png", []byte("x"))
	s.Fail(errors.New("decode failed"))

	assert.ErrorIs(t, s.Declare(context.Background(), store), ErrInvalidTransition)
	assert.Equal(t, UploadFailed, s.State())
	assert.EqualError(t, s.Reason(), "decode failed")
}

func TestUploadSession_RunKeepsFirstFailure(t *testing.T) {
	store := &fakeStore{handle: "fu-1"}
	s := NewUploadSession("selfie.png", "image/png", []byte("x"))
	s.Fail(errors.New("decode failed"))

	assert.Equal(t, UploadFailed, s.Run(context.Background(), store))
	assert.Empty(t, store.calls)
	assert.EqualError(t, s.Reason(), "decode failed")
}

func TestUploadSession_RunFailureReasonIsStepError(t *testing.T) {
	declareErr := errors.New("429 rate limited")
	store := &fakeStore{declareErr: declareErr}
	s := NewUploadSession("selfie.png", "image/png", []byte("x"))

	s.Run(context.Background(), store)

	assert.ErrorIs(t, s.Reason(), declareErr)
	assert.Equal(t, "upload creation failed: 429 rate limited", s.Reason().Error())
}

func TestNewFilename(t *testing.T) {
	now := time.Date(2025, 9, 14, 10, 30, 5, 123000000, time.UTC)
	name := NewFilename(now, ".png")

	assert.Regexp(t, regexp.MustCompile(`^selfie-2025-09-14T10-30-05-123Z-[0-9a-f]{8}\.png$`), name)
	assert.NotEqual(t, name, NewFilename(now, ".png"))
}
