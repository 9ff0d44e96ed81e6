// Package vcard renders contact cards in vCard 3.0 format.
package vcard

import (
	"strings"
)

// ContentType is the MIME type of a rendered card.
const ContentType = "text/vcard; charset=utf-8"

// Card is the profile written into a vCard. Name and Email are always
// emitted; the other fields only when non-empty.
type Card struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Company string `yaml:"company"`
	Title   string `yaml:"title"`
	Website string `yaml:"website"`
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", `\,`,
	";", `\;`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func escape(s string) string { return textEscaper.Replace(s) }

// String returns the card with CRLF line endings.
func (c Card) String() string {
	var b strings.Builder
	line := func(name, value string) {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	line("BEGIN", "VCARD")
	line("VERSION", "3.0")
	line("FN", escape(c.Name))
	given, family := splitName(c.Name)
	line("N", escape(family)+";"+escape(given)+";;;")
	line("EMAIL", escape(c.Email))
	if c.Phone != "" {
		line("TEL", escape(c.Phone))
	}
	if c.Company != "" {
		line("ORG", escape(c.Company))
	}
	if c.Title != "" {
		line("TITLE", escape(c.Title))
	}
	if c.Website != "" {
		// URL values are not text-escaped.
		line("URL", c.Website)
	}
	line("END", "VCARD")
	return b.String()
}

// Filename is the card name with spaces replaced by underscores plus ".vcf".
func (c Card) Filename() string {
	name := strings.Join(strings.Fields(c.Name), "_")
	if name == "" {
		return "contact.vcf"
	}
	return name + ".vcf"
}

// splitName treats the last word as the family name.
func splitName(full string) (given, family string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
