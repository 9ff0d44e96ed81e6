package handler

import (
	"fmt"
	"net/http"

	"github.com/cardsite/backend/pkg/vcard"
)

// VCardHandler serves the site owner's contact card.
type VCardHandler struct {
	card vcard.Card
}

func NewVCardHandler(card vcard.Card) *VCardHandler {
	return &VCardHandler{card: card}
}

// Download handles GET /api/vcard.
func (h *VCardHandler) Download(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", vcard.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.card.Filename()))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(h.card.String()))
}
