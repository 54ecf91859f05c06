// -----------------------------------------------------------------------
// PDF-Fill Engine - completed PDFs from an original document, a schema
// and submitted values. Native widgets are filled where present; text
// and checkmark overlays are drawn where absent. The output is always
// well-formed PDF bytes, even for a corrupt source document.
// -----------------------------------------------------------------------

package fill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/ternarybob/formforge/internal/models"
)

const (
	defaultOverlayX = 50.0
	defaultOverlayY = 700.0
	overlayStep     = 20.0
)

// Service implements interfaces.PDFFiller
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.PDFFiller = (*Service)(nil)

// NewService creates a new PDF fill service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// overlayMark is one piece of text or glyph drawn directly onto the page
// canvas when no native widget serves the field.
type overlayMark struct {
	text     string
	x, y     float64
	checkbox bool
}

// textFieldValue and checkboxValue mirror pdfcpu's form-fill JSON shape.
type textFieldValue struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type checkboxValue struct {
	Name   string `json:"name"`
	Value  bool   `json:"value"`
	Locked bool   `json:"locked"`
}

type radioValue struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type formValues struct {
	TextFields []textFieldValue `json:"textfield,omitempty"`
	Checkboxes []checkboxValue  `json:"checkbox,omitempty"`
	Radios     []radioValue     `json:"radiobuttongroup,omitempty"`
}

type fillPayload struct {
	Forms []formValues `json:"forms"`
}

// nativeFill is one field's planned widget fill plus the overlay line drawn
// in its place if the fill fails.
type nativeFill struct {
	values   formValues
	fallback overlayMark
}

// planNativeFill routes a field's value into the form-fill section matching
// its widget kind and prepares the stacked fallback line.
func planNativeFill(field models.FormField, index int, value string, kind widgetKind) nativeFill {
	x, y := stackedPosition(index)
	switch kind {
	case widgetCheckbox:
		return nativeFill{
			values:   formValues{Checkboxes: []checkboxValue{{Name: field.ID, Value: true}}},
			fallback: overlayMark{text: fmt.Sprintf("%s: yes", field.Label), x: x, y: y},
		}
	case widgetRadio:
		return nativeFill{
			values:   formValues{Radios: []radioValue{{Name: field.ID, Value: value}}},
			fallback: overlayMark{text: fmt.Sprintf("%s: %s", field.Label, value), x: x, y: y},
		}
	default:
		return nativeFill{
			values:   formValues{TextFields: []textFieldValue{{Name: field.ID, Value: value}}},
			fallback: overlayMark{text: fmt.Sprintf("%s: %s", field.Label, value), x: x, y: y},
		}
	}
}

// Fill produces the completed PDF. Native widgets are filled one field at a
// time so a single widget failure only demotes that field to a drawn
// "label: value" line; an unreadable source document degrades to a
// synthesized summary. Neither aborts the submission.
func (s *Service) Fill(ctx context.Context, original []byte, schema *models.FormSchema, submission *models.FormSubmission) ([]byte, error) {
	widgets, err := locateWidgets(original)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Source PDF is unreadable, synthesizing summary document")
		return s.synthesize(schema, submission)
	}

	var nativeFills []nativeFill
	var overlays []overlayMark

	for index, field := range schema.Fields {
		widget, hasWidget := widgets[field.ID]

		if field.Type == models.FieldTypeCheckbox {
			if !submission.BoolValue(field.ID) {
				continue
			}
			if hasWidget && widget.Kind == widgetCheckbox {
				nativeFills = append(nativeFills, planNativeFill(field, index, "", widgetCheckbox))
				continue
			}
			x, y := overlayPosition(field, index)
			overlays = append(overlays, overlayMark{text: "4", x: x, y: y, checkbox: true})
			continue
		}

		value, ok := submission.StringValue(field.ID)
		if !ok {
			continue
		}

		if hasWidget {
			switch widget.Kind {
			case widgetText, widgetChoice, widgetRadio:
				nativeFills = append(nativeFills, planNativeFill(field, index, value, widget.Kind))
			default:
				// Widget cannot take this value (e.g. a signature
				// widget). Fall back to the stacked label line.
				x, y := stackedPosition(index)
				overlays = append(overlays, overlayMark{text: fmt.Sprintf("%s: %s", field.Label, value), x: x, y: y})
			}
			continue
		}

		x, y := overlayPosition(field, index)
		overlays = append(overlays, overlayMark{text: value, x: x, y: y})
	}

	output := original

	for _, nf := range nativeFills {
		filled, err := s.fillNative(output, nf.values)
		if err != nil {
			s.logger.Warn().Err(err).Str("text", nf.fallback.text).Msg("Native form fill failed for field, drawing value as text")
			overlays = append(overlays, nf.fallback)
			continue
		}
		output = filled
	}

	for _, mark := range overlays {
		drawn, err := s.drawOverlay(output, mark)
		if err != nil {
			s.logger.Warn().Err(err).Str("text", mark.text).Msg("Overlay drawing failed, skipping mark")
			continue
		}
		output = drawn
	}

	flattened, err := s.flatten(output)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Form flattening failed, returning interactive document")
		return output, nil
	}

	return flattened, nil
}

// overlayPosition returns the field's declared position or the fixed
// default coordinate.
func overlayPosition(field models.FormField, index int) (float64, float64) {
	if field.Position != nil {
		return field.Position.X, field.Position.Y
	}
	return defaultOverlayX, defaultOverlayY - overlayStep*float64(index)
}

// stackedPosition derives the vertically-stacked fallback coordinate from
// the field's index in the schema.
func stackedPosition(index int) (float64, float64) {
	return defaultOverlayX, defaultOverlayY - overlayStep*float64(index)
}

// fillNative sets widget values through pdfcpu's form fill.
func (s *Service) fillNative(document []byte, values formValues) ([]byte, error) {
	payload, err := json.Marshal(fillPayload{Forms: []formValues{values}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode form values: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var buf bytes.Buffer
	if err := api.FillForm(bytes.NewReader(document), bytes.NewReader(payload), &buf, conf); err != nil {
		return nil, fmt.Errorf("form fill failed: %w", err)
	}
	return buf.Bytes(), nil
}

// drawOverlay stamps one text run or checkmark glyph onto the first page.
// Checkmarks use the ZapfDingbats check glyph.
func (s *Service) drawOverlay(document []byte, mark overlayMark) ([]byte, error) {
	font := "Helvetica"
	if mark.checkbox {
		font = "ZapfDingbats"
	}
	desc := fmt.Sprintf("font:%s, points:10, scale:1 abs, pos:bl, off:%.1f %.1f, rot:0, fillcolor:#000000", font, mark.x, mark.y)

	wm, err := api.TextWatermark(mark.text, desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build text mark: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var buf bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(document), &buf, []string{"1"}, wm, conf); err != nil {
		return nil, fmt.Errorf("failed to draw mark: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten locks every form field so the output is a static, non-editable
// document.
func (s *Service) flatten(document []byte) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var buf bytes.Buffer
	if err := api.LockFormFields(bytes.NewReader(document), &buf, nil, conf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
