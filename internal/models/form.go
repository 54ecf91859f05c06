package models

import "time"

// FormSchema is the ordered field list plus metadata describing one form.
// It is created once at extraction time and embedded in its owning Form
// record; edits happen in place with UpdatedAt bumped.
type FormSchema struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Fields      []FormField `json:"fields"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Field returns the field with the given id, or nil.
func (s *FormSchema) Field(id string) *FormField {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i]
		}
	}
	return nil
}

// Form is the stored form record. Schema is the field inference engine's
// output, persisted verbatim. PDFKey addresses the original document bytes
// in the byte store.
type Form struct {
	ID               string     `json:"id" badgerhold:"key"`
	UserID           string     `json:"user_id"`
	Name             string     `json:"name"`
	OriginalFilename string     `json:"original_filename"`
	PDFKey           string     `json:"pdf_key"`
	Schema           FormSchema `json:"schema"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
