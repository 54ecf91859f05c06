package models

import "fmt"

// FieldType enumerates the input kinds a form field may have.
// The type drives both the renderer validation rule and the PDF fill strategy.
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeEmail     FieldType = "email"
	FieldTypePhone     FieldType = "phone"
	FieldTypeDate      FieldType = "date"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeSelect    FieldType = "select"
	FieldTypeTextarea  FieldType = "textarea"
	FieldTypeSignature FieldType = "signature"
)

// ValidFieldTypes lists every member of the closed FieldType enumeration.
var ValidFieldTypes = []FieldType{
	FieldTypeText, FieldTypeEmail, FieldTypePhone, FieldTypeDate,
	FieldTypeCheckbox, FieldTypeRadio, FieldTypeSelect, FieldTypeTextarea,
	FieldTypeSignature,
}

// IsValid reports whether t is a member of the FieldType enumeration.
func (t FieldType) IsValid() bool {
	for _, v := range ValidFieldTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Validation holds optional per-field constraints. Min and Max constrain
// string length for plain text fields only.
type Validation struct {
	Min     *int   `json:"min,omitempty"`
	Max     *int   `json:"max,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// Position is a page-coordinate rectangle used only when the target PDF has
// no native widget for the field.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FormField is one inferred or authored field. ID is the join key between
// schema, submitted data and PDF widget names, and must be unique within a
// schema's field sequence.
type FormField struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Type        FieldType   `json:"type"`
	Required    bool        `json:"required,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Options     []string    `json:"options,omitempty"` // required for select/radio
	Validation  *Validation `json:"validation,omitempty"`
	Position    *Position   `json:"position,omitempty"`
}

// Normalize enforces the schema invariants on a field sequence: ids are
// deduplicated (first occurrence wins), missing ids get positional fallbacks,
// unknown types degrade to text, and choice fields without options are
// degraded to text rather than violating the non-empty options invariant.
func Normalize(fields []FormField) []FormField {
	seen := make(map[string]bool, len(fields))
	out := make([]FormField, 0, len(fields))
	for i, f := range fields {
		if f.ID == "" {
			f.ID = PositionalID(i)
		}
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		if !f.Type.IsValid() {
			f.Type = FieldTypeText
		}
		if (f.Type == FieldTypeSelect || f.Type == FieldTypeRadio) && len(f.Options) == 0 {
			f.Type = FieldTypeText
			f.Options = nil
		}
		out = append(out, f)
	}
	return out
}

// PositionalID returns the fallback id for the field at index i (0-based).
func PositionalID(i int) string {
	return fmt.Sprintf("field_%d", i+1)
}
