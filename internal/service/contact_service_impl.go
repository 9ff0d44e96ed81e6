package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardsite/backend/internal/metrics"
	"github.com/cardsite/backend/internal/model"
	"github.com/cardsite/backend/internal/photo"
	"github.com/cardsite/backend/internal/repository"
	"github.com/cardsite/backend/internal/storage"
	"github.com/cardsite/backend/pkg/notion"
	"github.com/go-playground/validator/v10"
)

// Contact database column names.
const (
	PropName     = "Name"
	PropEmail    = "Email"
	PropPhone    = "Phone"
	PropTwitter  = "Twitter"
	PropLinkedIn = "LinkedIn"
	PropCompany  = "Company"
	PropSelfie   = "Selfie"
	PropNote     = "Note"
)

// PhotoFailedNote is appended to the note column when a selfie is dropped.
const PhotoFailedNote = "Selfie upload failed"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ContactOptions configures a ContactService.
type ContactOptions struct {
	// Enabled is false when the external database credential is missing.
	Enabled     bool
	PhotoLimits photo.Limits
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type contactServiceImpl struct {
	repo  repository.ContactRepository
	store storage.ObjectStore
	opts  ContactOptions
}

// NewContactService creates a ContactService that persists through repo and
// uploads photos to store.
func NewContactService(repo repository.ContactRepository, store storage.ObjectStore, opts ContactOptions) ContactService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &contactServiceImpl{repo: repo, store: store, opts: opts}
}

type optionalField struct {
	name  string
	value model.Optional[string]
	build func(string) notion.Property
}

func (s *contactServiceImpl) Submit(ctx context.Context, sub model.ContactSubmission) (model.ContactResult, error) {
	sub.Normalize()

	if err := validateSubmission(&sub); err != nil {
		s.opts.Metrics.ContactSubmission(metrics.ResultRejected)
		return model.ContactResult{}, err
	}

	slog.InfoContext(ctx, "contact submission received",
		"source", sub.Source,
		"has_photo", sub.HasPhoto(),
		"has_email", sub.Email != "",
		"has_phone", sub.Phone != "",
	)

	if !s.opts.Enabled {
		slog.ErrorContext(ctx, "contact database credential not configured")
		s.opts.Metrics.ContactSubmission(metrics.ResultFailed)
		return model.ContactResult{}, ErrServiceUnavailable
	}

	b := notion.NewPropertyBuilder().Set(PropName, notion.Title(sub.Name))
	for _, f := range []optionalField{
		{PropEmail, model.OptionalString(sub.Email), notion.Email},
		{PropPhone, model.OptionalString(sub.Phone), notion.PhoneNumber},
		{PropTwitter, model.OptionalString(sub.Twitter), notion.RichText},
		{PropLinkedIn, model.OptionalString(sub.LinkedIn), notion.URL},
		{PropCompany, model.OptionalString(sub.Company), notion.RichText},
	} {
		b.SetOptional(f.name, f.value, f.build)
	}

	var result model.ContactResult
	if sub.HasPhoto() {
		session := s.uploadPhoto(ctx, sub.Photo)
		if ref, ok := session.Reference(); ok {
			b.Set(PropSelfie, notion.Files(ref))
			result.PhotoAttached = true
			s.opts.Metrics.PhotoUpload(metrics.ResultSuccess)
			slog.InfoContext(ctx, "selfie uploaded", "filename", session.Filename, "upload_id", session.Handle())
		} else {
			b.AppendNote(PropNote, PhotoFailedNote)
			result.PhotoFailure = session.Reason()
			s.opts.Metrics.PhotoUpload(metrics.ResultFailed)
			slog.WarnContext(ctx, "selfie upload failed",
				"filename", session.Filename,
				"state", session.State().String(),
				"error", session.Reason(),
			)
		}
	}

	id, err := s.repo.Create(ctx, b.Build())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save contact", "error", err)
		s.opts.Metrics.ContactSubmission(metrics.ResultFailed)
		return model.ContactResult{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	result.RecordID = id

	s.opts.Metrics.ContactSubmission(metrics.ResultSuccess)
	slog.InfoContext(ctx, "contact saved", "record_id", id, "photo_attached", result.PhotoAttached)
	return result, nil
}

// uploadPhoto decodes the data URI and runs the upload session. Decoding
// problems end the session in the Failed state like any protocol error.
func (s *contactServiceImpl) uploadPhoto(ctx context.Context, dataURI string) *storage.UploadSession {
	p, err := photo.Decode(dataURI, s.opts.PhotoLimits)
	if err != nil {
		session := storage.NewUploadSession("", "", nil)
		session.Fail(fmt.Errorf("decode photo: %w", err))
		return session
	}
	session := storage.NewUploadSession(storage.NewFilename(s.opts.Now(), p.Ext), p.ContentType, p.Data)
	session.Run(ctx, s.store)
	return session
}

func validateSubmission(sub *model.ContactSubmission) error {
	err := validate.Struct(sub)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Name":
			return &ValidationError{Field: "name", Message: MsgNameRequired}
		case "Email":
			return &ValidationError{Field: "contact", Message: MsgContactMethodRequired}
		}
	}
	return &ValidationError{Field: verrs[0].Field(), Message: verrs[0].Error()}
}
