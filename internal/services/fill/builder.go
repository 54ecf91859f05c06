package fill

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/formforge/internal/models"
)

// Form sheet layout constants, US-letter page in points.
const (
	sheetMarginLeft   = 50.0
	sheetMarginTop    = 50.0
	sheetMarginBottom = 60.0
	sheetPageHeight   = 792.0
	sheetFieldWidth   = 400.0
	sheetLabelHeight  = 16.0
	sheetInputHeight  = 24.0
	sheetSpacing      = 14.0
)

// BuildFormSheet renders the schema as a printable blank form: each field is
// a label line followed by an input area sized by type. The vertical cursor
// advances by label height plus field height plus fixed spacing, and a new
// page starts once the cursor would run past the bottom margin.
func (s *Service) BuildFormSheet(schema *models.FormSchema) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(sheetMarginLeft, sheetMarginTop, sheetMarginLeft)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.SetXY(sheetMarginLeft, sheetMarginTop)
	doc.Write(20, schema.Title)

	y := sheetMarginTop + 40
	if schema.Description != "" {
		doc.SetFont("Helvetica", "", 10)
		doc.SetXY(sheetMarginLeft, y)
		doc.Write(12, schema.Description)
		y += 26
	}

	for _, field := range schema.Fields {
		height := inputHeight(field)
		if y+sheetLabelHeight+height > sheetPageHeight-sheetMarginBottom {
			doc.AddPage()
			y = sheetMarginTop
		}

		label := field.Label
		if field.Required {
			label += " *"
		}
		doc.SetFont("Helvetica", "", 11)
		doc.SetXY(sheetMarginLeft, y)
		doc.Write(sheetLabelHeight, label)
		y += sheetLabelHeight + 4

		drawInput(doc, field, y)
		y += height + sheetSpacing
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to build form sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// inputHeight returns the drawn height of a field's input area.
func inputHeight(field models.FormField) float64 {
	switch field.Type {
	case models.FieldTypeTextarea:
		return sheetInputHeight * 2
	case models.FieldTypeCheckbox:
		return 14
	case models.FieldTypeSignature:
		return sheetInputHeight + 12
	default:
		return sheetInputHeight
	}
}

// drawInput draws the input widget for one field at vertical position y.
func drawInput(doc *fpdf.Fpdf, field models.FormField, y float64) {
	doc.SetDrawColor(60, 60, 60)

	switch field.Type {
	case models.FieldTypeCheckbox:
		doc.Rect(sheetMarginLeft, y, 12, 12, "D")

	case models.FieldTypeRadio:
		x := sheetMarginLeft
		doc.SetFont("Helvetica", "", 9)
		for _, option := range field.Options {
			doc.Circle(x+5, y+6, 5, "D")
			doc.SetXY(x+14, y)
			doc.Write(12, option)
			x += 24 + doc.GetStringWidth(option)
		}

	case models.FieldTypeSelect:
		doc.Rect(sheetMarginLeft, y, sheetFieldWidth, sheetInputHeight, "D")
		doc.SetFont("Helvetica", "", 9)
		doc.SetXY(sheetMarginLeft+6, y+6)
		doc.Write(12, fmt.Sprintf("Choose one: %s", joinOptions(field.Options)))

	case models.FieldTypeTextarea:
		doc.Rect(sheetMarginLeft, y, sheetFieldWidth, sheetInputHeight*2, "D")

	case models.FieldTypeSignature:
		doc.Rect(sheetMarginLeft, y, sheetFieldWidth, sheetInputHeight+12, "D")
		doc.SetFont("Helvetica", "I", 8)
		doc.SetXY(sheetMarginLeft+6, y+sheetInputHeight)
		doc.Write(10, "Signature")

	default:
		doc.Rect(sheetMarginLeft, y, sheetFieldWidth, sheetInputHeight, "D")
		if field.Placeholder != "" {
			doc.SetFont("Helvetica", "I", 8)
			doc.SetTextColor(150, 150, 150)
			doc.SetXY(sheetMarginLeft+6, y+7)
			doc.Write(10, field.Placeholder)
			doc.SetTextColor(0, 0, 0)
		}
	}
}

func joinOptions(options []string) string {
	var b bytes.Buffer
	for i, o := range options {
		if i > 0 {
			b.WriteString(" / ")
		}
		b.WriteString(o)
	}
	return b.String()
}
