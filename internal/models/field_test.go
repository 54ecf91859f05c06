package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []FormField
		want []FormField
	}{
		{
			name: "missing ids get positional fallbacks",
			in: []FormField{
				{Label: "First", Type: FieldTypeText},
				{Label: "Second", Type: FieldTypeEmail},
			},
			want: []FormField{
				{ID: "field_1", Label: "First", Type: FieldTypeText},
				{ID: "field_2", Label: "Second", Type: FieldTypeEmail},
			},
		},
		{
			name: "duplicate ids keep first occurrence",
			in: []FormField{
				{ID: "email", Label: "Email", Type: FieldTypeEmail},
				{ID: "email", Label: "Email again", Type: FieldTypeText},
			},
			want: []FormField{
				{ID: "email", Label: "Email", Type: FieldTypeEmail},
			},
		},
		{
			name: "unknown type degrades to text",
			in:   []FormField{{ID: "x", Label: "X", Type: FieldType("slider")}},
			want: []FormField{{ID: "x", Label: "X", Type: FieldTypeText}},
		},
		{
			name: "choice field without options degrades to text",
			in:   []FormField{{ID: "size", Label: "Size", Type: FieldTypeSelect}},
			want: []FormField{{ID: "size", Label: "Size", Type: FieldTypeText}},
		},
		{
			name: "choice field with options survives",
			in:   []FormField{{ID: "size", Label: "Size", Type: FieldTypeRadio, Options: []string{"S", "M"}}},
			want: []FormField{{ID: "size", Label: "Size", Type: FieldTypeRadio, Options: []string{"S", "M"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestFieldTypeIsValid(t *testing.T) {
	for _, ft := range ValidFieldTypes {
		assert.True(t, ft.IsValid())
	}
	assert.False(t, FieldType("slider").IsValid())
	assert.False(t, FieldType("").IsValid())
}

func TestSubmissionValues(t *testing.T) {
	sub := &FormSubmission{Data: map[string]interface{}{
		"name":    "Ada",
		"empty":   "",
		"agree":   true,
		"decline": false,
		"stringy": "true",
		"number":  42.0,
	}}

	v, ok := sub.StringValue("name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", v)

	_, ok = sub.StringValue("empty")
	assert.False(t, ok, "empty string counts as absent")
	_, ok = sub.StringValue("missing")
	assert.False(t, ok)
	_, ok = sub.StringValue("number")
	assert.False(t, ok, "non-string values are not stringified")

	assert.True(t, sub.BoolValue("agree"))
	assert.False(t, sub.BoolValue("decline"))
	assert.True(t, sub.BoolValue("stringy"), "string form of true is accepted")
	assert.False(t, sub.BoolValue("missing"))
}
