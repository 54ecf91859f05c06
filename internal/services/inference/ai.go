package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/models"
	"github.com/ternarybob/formforge/internal/services/llm"
)

// extractionSystemInstruction pins the backend to a bare JSON array response
// matching the FormField shape. Anything else is treated as a failed call.
const extractionSystemInstruction = `You are a form field extraction engine. Given the text of a document, identify every input field a person would fill in and return ONLY a JSON array of objects, with no surrounding prose and no markdown fences.

Each object has:
  "id": short snake_case identifier (string)
  "label": human-readable caption (string)
  "type": one of "text", "email", "phone", "date", "checkbox", "radio", "select", "textarea", "signature"
  "required": boolean (optional, default false)
  "placeholder": string (optional)
  "options": array of strings (required when type is "select" or "radio")
  "validation": object with optional "min", "max", "pattern" (optional)

Return [] if the document has no fillable fields.`

// aiExtractor runs the structured-extraction strategy against an LLM provider.
type aiExtractor struct {
	provider llm.Provider
	retry    *llm.RetryConfig
	logger   arbor.ILogger
}

func newAIExtractor(provider llm.Provider, retry *llm.RetryConfig, logger arbor.ILogger) *aiExtractor {
	if retry == nil {
		retry = llm.NewDefaultRetryConfig()
	}
	return &aiExtractor{provider: provider, retry: retry, logger: logger}
}

// extract asks the backend for a field list. Transient provider errors
// (rate limits, overload) are retried with backoff; every other failure mode
// returns an error so the caller can fall back to the sample schema.
func (e *aiExtractor) extract(ctx context.Context, text string) ([]models.FormField, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	request := &llm.ContentRequest{
		Messages: []llm.Message{
			{Role: "user", Content: "Extract the form fields from this document:\n\n" + text},
		},
		SystemInstruction: extractionSystemInstruction,
		Temperature:       0.1,
	}

	var response *llm.ContentResponse
	var err error
	for attempt := 0; ; attempt++ {
		response, err = e.provider.GenerateContent(ctx, request)
		if err == nil {
			break
		}
		if attempt >= e.retry.MaxRetries || !llm.IsTransientError(err) {
			return nil, fmt.Errorf("field extraction call failed: %w", err)
		}

		backoff := e.retry.CalculateBackoff(attempt, llm.ExtractRetryDelay(err))
		e.logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("Transient extraction failure, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	fields, err := parseFieldArray(response.Text)
	if err != nil {
		return nil, err
	}
	return models.Normalize(fields), nil
}

// parseFieldArray parses the response body strictly as a JSON array of
// FormField objects. Markdown code fences are tolerated and stripped since
// some models wrap output despite instructions.
func parseFieldArray(body string) ([]models.FormField, error) {
	cleaned := strings.TrimSpace(body)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	if cleaned == "" {
		return nil, fmt.Errorf("empty response from extraction backend")
	}

	var fields []models.FormField
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("response is not a valid field array: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("extraction backend returned no fields")
	}
	return fields, nil
}
