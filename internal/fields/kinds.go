package fields

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
)

// Value is a single typed field value within a region.
type Value interface {
	Kind() string
}

// Built-in kind identifiers. Field declarations reference these in their
// Type attribute.
const (
	KindString   = "String"
	KindText     = "Text"
	KindHTML     = "Html"
	KindMarkdown = "Markdown"
	KindImage    = "Image"
	KindNumber   = "Number"
	KindCheckbox = "Checkbox"
	KindDate     = "Date"
)

// StringField is a short single-line value.
type StringField struct {
	Value string `json:"value"`
}

func (StringField) Kind() string { return KindString }

// TextField is a multi-line plain text value.
type TextField struct {
	Value string `json:"value"`
}

func (TextField) Kind() string { return KindText }

// HTMLField stores pre-rendered markup.
type HTMLField struct {
	Value string `json:"value"`
}

func (HTMLField) Kind() string { return KindHTML }

// MarkdownField stores markdown source and renders it on demand.
type MarkdownField struct {
	Value string `json:"value"`
}

func (MarkdownField) Kind() string { return KindMarkdown }

// ToHTML renders the markdown source using goldmark.
func (f *MarkdownField) ToHTML() (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(f.Value), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ImageField references a stored media asset by id.
type ImageField struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url,omitempty"`
}

func (ImageField) Kind() string { return KindImage }

// HasValue reports whether an asset has been assigned.
func (f *ImageField) HasValue() bool {
	return f != nil && f.ID != uuid.Nil
}

// NumberField stores an optional integer value.
type NumberField struct {
	Value *int64 `json:"value,omitempty"`
}

func (NumberField) Kind() string { return KindNumber }

// CheckboxField stores a boolean toggle.
type CheckboxField struct {
	Value bool `json:"value"`
}

func (CheckboxField) Kind() string { return KindCheckbox }

// DateField stores an optional timestamp.
type DateField struct {
	Value *time.Time `json:"value,omitempty"`
}

func (DateField) Kind() string { return KindDate }

func builtinKinds() map[string]Constructor {
	return map[string]Constructor{
		KindString:   func() Value { return &StringField{} },
		KindText:     func() Value { return &TextField{} },
		KindHTML:     func() Value { return &HTMLField{} },
		KindMarkdown: func() Value { return &MarkdownField{} },
		KindImage:    func() Value { return &ImageField{} },
		KindNumber:   func() Value { return &NumberField{} },
		KindCheckbox: func() Value { return &CheckboxField{} },
		KindDate:     func() Value { return &DateField{} },
	}
}
