package fill

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/common"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/ternarybob/formforge/internal/models"
	"github.com/ternarybob/formforge/internal/services/extraction"
)

func newTestService() *Service {
	return NewService(arbor.NewLogger())
}

func buildPlainPDF(t *testing.T, lines ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	for _, line := range lines {
		doc.Write(14, line)
		doc.Ln(18)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

// extractAllText reads a produced document back through the text extraction
// engine, which reassembles per-glyph runs into proper lines.
func extractAllText(t *testing.T, document []byte) string {
	t.Helper()
	svc := extraction.NewService(&common.OCRConfig{}, arbor.NewLogger())
	text, err := svc.Extract(context.Background(), document, interfaces.DocumentKindPDF, nil)
	require.NoError(t, err)
	return text
}

func testSubmission(data map[string]interface{}) *models.FormSubmission {
	return &models.FormSubmission{
		ID:          "sub_test",
		FormID:      "form_test",
		Data:        data,
		Status:      models.SubmissionStatusPending,
		SubmittedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestFill_DrawsValueOnPlainPDF(t *testing.T) {
	svc := newTestService()
	original := buildPlainPDF(t, "Contact form")
	schema := &models.FormSchema{
		Title: "Contact",
		Fields: []models.FormField{
			{ID: "name", Label: "Name", Type: models.FieldTypeText},
		},
	}

	output, err := svc.Fill(context.Background(), original, schema, testSubmission(map[string]interface{}{"name": "Ada Lovelace"}))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(output, []byte("%PDF")))
	assert.Contains(t, extractAllText(t, output), "Ada Lovelace")
}

func TestFill_SkipsEmptyValues(t *testing.T) {
	svc := newTestService()
	original := buildPlainPDF(t, "Contact form")
	schema := &models.FormSchema{
		Title: "Contact",
		Fields: []models.FormField{
			{ID: "email", Label: "Email", Type: models.FieldTypeEmail},
		},
	}

	output, err := svc.Fill(context.Background(), original, schema, testSubmission(map[string]interface{}{"email": ""}))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(output, []byte("%PDF")))
	text := extractAllText(t, output)
	assert.Contains(t, text, "Contact form")
	assert.NotContains(t, text, "Email:")
}

func TestFill_UncheckedCheckboxLeavesNoMark(t *testing.T) {
	svc := newTestService()
	original := buildPlainPDF(t, "Agreement")
	schema := &models.FormSchema{
		Title: "Agreement",
		Fields: []models.FormField{
			{ID: "agree", Label: "I agree", Type: models.FieldTypeCheckbox},
		},
	}

	output, err := svc.Fill(context.Background(), original, schema, testSubmission(map[string]interface{}{"agree": false}))
	require.NoError(t, err)

	text := extractAllText(t, output)
	assert.Contains(t, text, "Agreement")
	assert.NotContains(t, text, "4")
}

func TestFill_CorruptSourceSynthesizesSummary(t *testing.T) {
	svc := newTestService()
	schema := &models.FormSchema{
		Title: "Intake",
		Fields: []models.FormField{
			{ID: "x", Label: "X", Type: models.FieldTypeText},
		},
	}

	output, err := svc.Fill(context.Background(), []byte("definitely not a pdf"), schema, testSubmission(map[string]interface{}{"x": "hello"}))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(output, []byte("%PDF")))
	text := extractAllText(t, output)
	assert.Contains(t, text, "Intake")
	assert.Contains(t, text, "Form Submission")
	assert.Contains(t, text, "X: hello")
	assert.Contains(t, text, "Submitted:")
}

func TestFill_FieldsStackInSchemaOrder(t *testing.T) {
	svc := newTestService()
	original := buildPlainPDF(t, "Stacked")
	schema := &models.FormSchema{
		Title: "Stacked",
		Fields: []models.FormField{
			{ID: "first", Label: "First", Type: models.FieldTypeText},
			{ID: "second", Label: "Second", Type: models.FieldTypeText},
		},
	}

	output, err := svc.Fill(context.Background(), original, schema, testSubmission(map[string]interface{}{
		"first":  "alpha",
		"second": "beta",
	}))
	require.NoError(t, err)

	text := extractAllText(t, output)
	assert.Contains(t, text, "alpha")
	assert.Contains(t, text, "beta")
}

func TestFill_DeclaredPositionWins(t *testing.T) {
	svc := newTestService()
	original := buildPlainPDF(t, "Positioned")
	schema := &models.FormSchema{
		Title: "Positioned",
		Fields: []models.FormField{
			{ID: "note", Label: "Note", Type: models.FieldTypeText, Position: &models.Position{X: 120, Y: 400}},
		},
	}

	output, err := svc.Fill(context.Background(), original, schema, testSubmission(map[string]interface{}{"note": "pinned"}))
	require.NoError(t, err)
	assert.Contains(t, extractAllText(t, output), "pinned")
}

func TestPlanNativeFill_SectionsPerWidgetKind(t *testing.T) {
	field := models.FormField{ID: "size", Label: "Size", Type: models.FieldTypeRadio}

	plan := planNativeFill(field, 2, "M", widgetRadio)
	require.Len(t, plan.values.Radios, 1)
	assert.Empty(t, plan.values.TextFields, "radio values never go through the text field section")
	assert.Equal(t, "size", plan.values.Radios[0].Name)
	assert.Equal(t, "M", plan.values.Radios[0].Value)
	assert.Equal(t, "Size: M", plan.fallback.text)
	_, y := stackedPosition(2)
	assert.Equal(t, y, plan.fallback.y, "fallback stacks at the field's own index")

	text := planNativeFill(models.FormField{ID: "name", Label: "Name", Type: models.FieldTypeText}, 0, "Ada", widgetText)
	require.Len(t, text.values.TextFields, 1)
	assert.Empty(t, text.values.Radios)

	box := planNativeFill(models.FormField{ID: "agree", Label: "I agree", Type: models.FieldTypeCheckbox}, 1, "", widgetCheckbox)
	require.Len(t, box.values.Checkboxes, 1)
	assert.True(t, box.values.Checkboxes[0].Value)
	assert.Equal(t, "I agree: yes", box.fallback.text)
}

func TestFillPayload_RadioJSONShape(t *testing.T) {
	payload, err := json.Marshal(fillPayload{Forms: []formValues{
		planNativeFill(models.FormField{ID: "size", Label: "Size"}, 0, "L", widgetRadio).values,
	}})
	require.NoError(t, err)

	assert.Contains(t, string(payload), `"radiobuttongroup"`)
	assert.NotContains(t, string(payload), `"textfield"`)
}

func TestBuildFormSheet(t *testing.T) {
	svc := newTestService()
	schema := &models.FormSchema{
		Title:       "Patient Intake",
		Description: "Please complete all required fields.",
		Fields: []models.FormField{
			{ID: "full_name", Label: "Full Name", Type: models.FieldTypeText, Required: true, Placeholder: "Jane Doe"},
			{ID: "notes", Label: "Notes", Type: models.FieldTypeTextarea},
			{ID: "agree", Label: "I agree", Type: models.FieldTypeCheckbox},
			{ID: "size", Label: "Size", Type: models.FieldTypeRadio, Options: []string{"S", "M", "L"}},
			{ID: "state", Label: "State", Type: models.FieldTypeSelect, Options: []string{"NSW", "VIC"}},
			{ID: "signature", Label: "Signature", Type: models.FieldTypeSignature},
		},
	}

	output, err := svc.BuildFormSheet(schema)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(output, []byte("%PDF")))
	text := extractAllText(t, output)
	assert.Contains(t, text, "Patient Intake")
	assert.Contains(t, text, "Full Name *")
	assert.Contains(t, text, "Signature")
}

func TestBuildFormSheet_ManyFieldsPaginate(t *testing.T) {
	svc := newTestService()
	schema := &models.FormSchema{Title: "Long Form"}
	for i := 0; i < 30; i++ {
		schema.Fields = append(schema.Fields, models.FormField{
			ID:    models.PositionalID(i),
			Label: "Question",
			Type:  models.FieldTypeText,
		})
	}

	output, err := svc.BuildFormSheet(schema)
	require.NoError(t, err)

	reader, err := pdf.NewReader(bytes.NewReader(output), int64(len(output)))
	require.NoError(t, err)
	assert.Greater(t, reader.NumPage(), 1)
}
