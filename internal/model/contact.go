package model

import "strings"

// DefaultContactSource tags submissions that did not say where they came from.
const DefaultContactSource = "contact_form"

// ContactSubmission is the payload of POST /api/contact.
// Name is required and at least one of Email, Phone, Twitter or LinkedIn must
// be present; Photo is a data URI sent by the selfie exchange.
type ContactSubmission struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email,omitempty" validate:"required_without_all=Phone Twitter LinkedIn"`
	Phone    string `json:"phone,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Company  string `json:"company,omitempty"`
	Source   string `json:"source,omitempty"`
	Photo    string `json:"photo,omitempty"`
}

// Normalize trims surrounding whitespace from every text field and fills the
// default source.
func (c *ContactSubmission) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Twitter = strings.TrimSpace(c.Twitter)
	c.LinkedIn = strings.TrimSpace(c.LinkedIn)
	c.Company = strings.TrimSpace(c.Company)
	c.Source = strings.TrimSpace(c.Source)
	c.Photo = strings.TrimSpace(c.Photo)
	if c.Source == "" {
		c.Source = DefaultContactSource
	}
}

func (c ContactSubmission) HasPhoto() bool { return c.Photo != "" }

// ContactResult describes what happened to a persisted submission.
type ContactResult struct {
	RecordID      string
	PhotoAttached bool
	// PhotoFailure is set when a photo was supplied but could not be uploaded.
	PhotoFailure error
}
