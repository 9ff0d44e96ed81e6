package notion

import (
	"encoding/json"
	"strings"
	"time"
)

// Property kinds understood by the pages API.
const (
	KindTitle       = "title"
	KindRichText    = "rich_text"
	KindEmail       = "email"
	KindPhoneNumber = "phone_number"
	KindURL         = "url"
	KindSelect      = "select"
	KindDate        = "date"
	KindFiles       = "files"
)

// Property is one typed value of a page property map. It marshals to
// {"<kind>": <value>} which is the shape Notion expects in pages.create.
type Property struct {
	kind  string
	value any
}

// Kind returns the Notion property type, e.g. "email".
func (p Property) Kind() string { return p.kind }

// Value returns the raw JSON value carried by the property.
func (p Property) Value() any { return p.value }

func (p Property) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{p.kind: p.value})
}

// PlainText flattens title and rich_text properties into their text content.
// Other kinds return "".
func (p Property) PlainText() string {
	blocks, ok := p.value.([]RichTextBlock)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.Text.Content)
	}
	return sb.String()
}

// RichTextBlock is a single text run.
type RichTextBlock struct {
	Text TextContent `json:"text"`
}

type TextContent struct {
	Content string `json:"content"`
}

type SelectOption struct {
	Name string `json:"name"`
}

type DateValue struct {
	Start string `json:"start"`
}

// FileUploadRef points a files property at a completed file upload.
type FileUploadRef struct {
	Name       string       `json:"name"`
	Type       string       `json:"type"`
	FileUpload FileUploadID `json:"file_upload"`
}

type FileUploadID struct {
	ID string `json:"id"`
}

// NewFileUploadRef builds the reference embedded in a files property.
func NewFileUploadRef(name, uploadID string) FileUploadRef {
	return FileUploadRef{Name: name, Type: "file_upload", FileUpload: FileUploadID{ID: uploadID}}
}

func textBlocks(s string) []RichTextBlock {
	return []RichTextBlock{{Text: TextContent{Content: s}}}
}

func Title(s string) Property       { return Property{kind: KindTitle, value: textBlocks(s)} }
func RichText(s string) Property    { return Property{kind: KindRichText, value: textBlocks(s)} }
func Email(s string) Property       { return Property{kind: KindEmail, value: s} }
func PhoneNumber(s string) Property { return Property{kind: KindPhoneNumber, value: s} }
func URL(s string) Property         { return Property{kind: KindURL, value: s} }

// NullURL clears a url property; it marshals to {"url": null}.
func NullURL() Property { return Property{kind: KindURL, value: nil} }

func Select(name string) Property { return Property{kind: KindSelect, value: SelectOption{Name: name}} }

func Date(t time.Time) Property {
	return Property{kind: KindDate, value: DateValue{Start: t.UTC().Format(time.RFC3339Nano)}}
}

func Files(refs ...FileUploadRef) Property {
	return Property{kind: KindFiles, value: refs}
}

// Properties is the property map of a page.
type Properties map[string]Property

// Has reports whether name is present in the map.
func (p Properties) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// PropertyBuilder assembles a Properties map. Absent optional values are
// omitted entirely so that database defaults are never overwritten with
// empty values.
type PropertyBuilder struct {
	props Properties
}

func NewPropertyBuilder() *PropertyBuilder {
	return &PropertyBuilder{props: Properties{}}
}

// Set stores p under name, replacing any previous value.
func (b *PropertyBuilder) Set(name string, p Property) *PropertyBuilder {
	b.props[name] = p
	return b
}

// OptionalText is a value that may be absent.
type OptionalText interface {
	Get() (string, bool)
}

// SetOptional stores build(v) under name only when v is present.
func (b *PropertyBuilder) SetOptional(name string, v OptionalText, build func(string) Property) *PropertyBuilder {
	if s, ok := v.Get(); ok {
		b.props[name] = build(s)
	}
	return b
}

// AppendNote adds text to the rich_text property name, keeping whatever was
// already there and separating entries with " | ".
func (b *PropertyBuilder) AppendNote(name, text string) *PropertyBuilder {
	if existing := b.props[name].PlainText(); existing != "" {
		text = existing + " | " + text
	}
	b.props[name] = RichText(text)
	return b
}

// Build returns a copy of the assembled map.
func (b *PropertyBuilder) Build() Properties {
	out := make(Properties, len(b.props))
	for k, v := range b.props {
		out[k] = v
	}
	return out
}
