package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cardsite/backend/internal/model"
	"github.com/cardsite/backend/internal/service"
)

// ContactBodyLimit returns the request size cap for a photo limit of
// maxPhotoBytes. Photos up to twice the limit still reach the decoder, so an
// oversized selfie ends as a note on the saved contact rather than a rejected
// request.
func ContactBodyLimit(maxPhotoBytes int64) int64 {
	return int64(base64.StdEncoding.EncodedLen(int(2*maxPhotoBytes))) + 64<<10
}

const (
	msgInvalidBody        = "Invalid request body"
	msgBodyTooLarge       = "Request body too large"
	msgContactSuccess     = "Contact information received successfully!"
	msgContactUnavailable = "Contact service not available. Please try again later."
	msgContactSaveFailed  = "Failed to save contact information. Please try again."
)

// ContactHandler handles the contact exchange form.
type ContactHandler struct {
	contactService service.ContactService
	maxBodyBytes   int64
}

// NewContactHandler creates a ContactHandler. maxBodyBytes is usually
// ContactBodyLimit of the configured photo limit.
func NewContactHandler(contactService service.ContactService, maxBodyBytes int64) *ContactHandler {
	return &ContactHandler{contactService: contactService, maxBodyBytes: maxBodyBytes}
}

type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Submit handles POST /api/contact.
// name is required along with at least one of email, phone, twitter or
// linkedin. A photo that cannot be uploaded does not fail the request.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req model.ContactSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if _, err := h.contactService.Submit(r.Context(), req); err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, service.ErrServiceUnavailable):
			writeError(w, http.StatusInternalServerError, msgContactUnavailable)
		default:
			writeError(w, http.StatusInternalServerError, msgContactSaveFailed)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(contactResponse{Success: true, Message: msgContactSuccess})
}

// writeDecodeError answers 413 when the body cap was hit and 400 otherwise.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return
	}
	writeError(w, http.StatusBadRequest, msgInvalidBody)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
