package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/common"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/ternarybob/formforge/internal/models"
)

// --- in-memory stubs ---

type memFormStorage struct {
	forms map[string]*models.Form
}

func newMemFormStorage() *memFormStorage {
	return &memFormStorage{forms: make(map[string]*models.Form)}
}

func (s *memFormStorage) SaveForm(ctx context.Context, form *models.Form) error {
	now := time.Now()
	if form.CreatedAt.IsZero() {
		form.CreatedAt = now
	}
	form.UpdatedAt = now
	s.forms[form.ID] = form
	return nil
}

func (s *memFormStorage) GetForm(ctx context.Context, id string) (*models.Form, error) {
	form, ok := s.forms[id]
	if !ok {
		return nil, fmt.Errorf("form not found: %s", id)
	}
	return form, nil
}

func (s *memFormStorage) ListForms(ctx context.Context, userID string) ([]*models.Form, error) {
	var out []*models.Form
	for _, f := range s.forms {
		if userID == "" || f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *memFormStorage) DeleteForm(ctx context.Context, id string) error {
	delete(s.forms, id)
	return nil
}

type memSubmissionStorage struct {
	subs map[string]*models.FormSubmission
}

func newMemSubmissionStorage() *memSubmissionStorage {
	return &memSubmissionStorage{subs: make(map[string]*models.FormSubmission)}
}

func (s *memSubmissionStorage) SaveSubmission(ctx context.Context, sub *models.FormSubmission) error {
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	if sub.Status == "" {
		sub.Status = models.SubmissionStatusPending
	}
	s.subs[sub.ID] = sub
	return nil
}

func (s *memSubmissionStorage) GetSubmission(ctx context.Context, id string) (*models.FormSubmission, error) {
	sub, ok := s.subs[id]
	if !ok {
		return nil, fmt.Errorf("submission not found: %s", id)
	}
	return sub, nil
}

func (s *memSubmissionStorage) ListSubmissions(ctx context.Context, formID string) ([]*models.FormSubmission, error) {
	var out []*models.FormSubmission
	for _, sub := range s.subs {
		if sub.FormID == formID {
			out = append(out, sub)
		}
	}
	return out, nil
}

type memFileStorage struct {
	files map[string][]byte
}

func newMemFileStorage() *memFileStorage {
	return &memFileStorage{files: make(map[string][]byte)}
}

func (s *memFileStorage) PutFile(ctx context.Context, key string, data []byte) error {
	s.files[key] = data
	return nil
}

func (s *memFileStorage) GetFile(ctx context.Context, key string) ([]byte, error) {
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", key)
	}
	return data, nil
}

func (s *memFileStorage) DeleteFile(ctx context.Context, key string) error {
	delete(s.files, key)
	return nil
}

type stubExtractor struct {
	text         string
	err          error
	scannedText  string
	scannedCalls int
}

func (e *stubExtractor) Extract(ctx context.Context, document []byte, kind interfaces.DocumentKind, onProgress interfaces.ProgressFunc) (string, error) {
	return e.text, e.err
}

func (e *stubExtractor) ExtractScanned(ctx context.Context, document []byte, onProgress interfaces.ProgressFunc) (string, error) {
	e.scannedCalls++
	return e.scannedText, nil
}

type stubInferencer struct {
	result *models.InferenceResult
}

func (i *stubInferencer) Infer(ctx context.Context, text string, strategy models.InferenceStrategy) (*models.InferenceResult, error) {
	return i.result, nil
}

type textCapturingInferencer struct {
	captured *string
}

func (i *textCapturingInferencer) Infer(ctx context.Context, text string, strategy models.InferenceStrategy) (*models.InferenceResult, error) {
	*i.captured = text
	return &models.InferenceResult{Strategy: strategy, Fields: []models.FormField{{ID: "name", Label: "Name", Type: models.FieldTypeText}}}, nil
}

type stubFiller struct {
	output []byte
}

func (f *stubFiller) Fill(ctx context.Context, original []byte, schema *models.FormSchema, submission *models.FormSubmission) ([]byte, error) {
	return f.output, nil
}

func (f *stubFiller) BuildFormSheet(schema *models.FormSchema) ([]byte, error) {
	return f.output, nil
}

type stubNotifier struct {
	confirmations int
	notifications int
}

func (n *stubNotifier) SendSubmitterConfirmation(ctx context.Context, to, formName, submissionID string, submittedAt time.Time) error {
	n.confirmations++
	return nil
}

func (n *stubNotifier) SendOwnerNotification(ctx context.Context, to, formName, submissionID string, data map[string]interface{}) error {
	n.notifications++
	return fmt.Errorf("smtp unreachable")
}

// --- upload handler ---

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func newUploadHandler(forms *memFormStorage, files *memFileStorage, result *models.InferenceResult) *UploadHandler {
	return NewUploadHandler(
		common.DefaultConfig(),
		&stubExtractor{text: "Full Name:\nEmail:"},
		&stubInferencer{result: result},
		forms,
		files,
		arbor.NewLogger(),
	)
}

func TestUploadHandler_CreatesForm(t *testing.T) {
	forms := newMemFormStorage()
	files := newMemFileStorage()
	handler := newUploadHandler(forms, files, &models.InferenceResult{
		Strategy: models.StrategyHeuristic,
		Fields: []models.FormField{
			{ID: "name", Label: "Name", Type: models.FieldTypeText},
		},
	})

	body, contentType := multipartBody(t, "intake.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UploadHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "heuristic", resp.Strategy)
	assert.Empty(t, resp.Warning)
	require.NotNil(t, resp.Form)
	assert.Equal(t, "intake", resp.Form.Name)
	require.Len(t, resp.Form.Schema.Fields, 1)

	assert.Len(t, forms.forms, 1, "form persisted")
	assert.Len(t, files.files, 1, "original bytes persisted")
}

func TestUploadHandler_WarningSurfacedOnFallback(t *testing.T) {
	handler := newUploadHandler(newMemFormStorage(), newMemFileStorage(), &models.InferenceResult{
		Strategy: models.StrategyFallback,
		Fields:   []models.FormField{{ID: "name", Label: "Name", Type: models.FieldTypeText}},
		Warning:  "automatic field extraction failed; using sample fields",
	})

	body, contentType := multipartBody(t, "scan.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload?strategy=ai", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UploadHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fallback", resp.Strategy)
	assert.NotEmpty(t, resp.Warning)
}

func TestUploadHandler_NameDropsAnyExtension(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        string
	}{
		{"Intake.PDF", "application/pdf", "Intake"},
		{"scan.png", "image/png", "scan"},
		{"photo.jpeg", "image/jpeg", "photo"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			handler := newUploadHandler(newMemFormStorage(), newMemFileStorage(), &models.InferenceResult{
				Strategy: models.StrategyHeuristic,
				Fields:   []models.FormField{{ID: "name", Label: "Name", Type: models.FieldTypeText}},
			})

			body, contentType := multipartBody(t, tt.filename, tt.contentType, []byte("bytes"))
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.UploadHandler(rec, req)

			require.Equal(t, http.StatusCreated, rec.Code)
			var resp uploadResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Form.Name)
		})
	}
}

func TestUploadHandler_EmptyTextLayerFallsBackToOCR(t *testing.T) {
	extractor := &stubExtractor{text: "", scannedText: "Name:\nEmail:"}
	var inferredText string
	handler := NewUploadHandler(
		common.DefaultConfig(),
		extractor,
		&textCapturingInferencer{captured: &inferredText},
		newMemFormStorage(),
		newMemFileStorage(),
		arbor.NewLogger(),
	)

	body, contentType := multipartBody(t, "scan.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UploadHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, extractor.scannedCalls, "scanned path engaged for empty text layer")
	assert.Equal(t, "Name:\nEmail:", inferredText)
}

func TestUploadHandler_RejectsUnsupportedType(t *testing.T) {
	handler := newUploadHandler(newMemFormStorage(), newMemFileStorage(), nil)

	body, contentType := multipartBody(t, "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUploadHandler_RejectsWrongMethod(t *testing.T) {
	handler := newUploadHandler(newMemFormStorage(), newMemFileStorage(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/upload", nil)
	rec := httptest.NewRecorder()
	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// --- form handler ---

func seedForm(t *testing.T, forms *memFormStorage) *models.Form {
	t.Helper()
	form := &models.Form{
		ID:     "form_1",
		Name:   "Intake",
		PDFKey: "file_orig",
		Schema: models.FormSchema{
			ID:    "schema_1",
			Title: "Intake",
			Fields: []models.FormField{
				{ID: "name", Label: "Name", Type: models.FieldTypeText, Required: true},
				{ID: "email", Label: "Email", Type: models.FieldTypeEmail},
			},
		},
	}
	require.NoError(t, forms.SaveForm(context.Background(), form))
	return form
}

func TestFormHandler_GetMissingReturns404(t *testing.T) {
	handler := NewFormHandler(newMemFormStorage(), &stubFiller{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/forms/form_missing", nil)
	rec := httptest.NewRecorder()
	handler.GetHandler(rec, req, "form_missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormHandler_UpdateReplacesFields(t *testing.T) {
	forms := newMemFormStorage()
	form := seedForm(t, forms)
	before := form.Schema.UpdatedAt
	handler := NewFormHandler(forms, &stubFiller{}, arbor.NewLogger())

	payload := `{"fields":[{"id":"phone","label":"Phone","type":"phone"},{"label":"Extra","type":"text"}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/forms/form_1", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	handler.UpdateHandler(rec, req, "form_1")

	require.Equal(t, http.StatusOK, rec.Code)

	updated := forms.forms["form_1"]
	require.Len(t, updated.Schema.Fields, 2)
	assert.Equal(t, "phone", updated.Schema.Fields[0].ID)
	assert.Equal(t, "field_2", updated.Schema.Fields[1].ID, "missing id normalized")
	assert.True(t, updated.Schema.UpdatedAt.After(before) || before.IsZero())
}

// --- submission handler ---

func newSubmissionHandler(forms *memFormStorage, subs *memSubmissionStorage, files *memFileStorage, notifier *stubNotifier) *SubmissionHandler {
	return NewSubmissionHandler(
		forms, subs, files,
		&stubFiller{output: []byte("%PDF-1.4 completed")},
		notifier,
		"owner@example.com",
		arbor.NewLogger(),
	)
}

func TestSubmitHandler_ValidationFailure(t *testing.T) {
	forms := newMemFormStorage()
	seedForm(t, forms)
	handler := newSubmissionHandler(forms, newMemSubmissionStorage(), newMemFileStorage(), &stubNotifier{})

	payload := `{"data":{"email":"not-an-email"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/forms/form_1/submit", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	handler.SubmitHandler(rec, req, "form_1")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSubmitHandler_InvalidSubmitterEmail(t *testing.T) {
	forms := newMemFormStorage()
	seedForm(t, forms)
	subs := newMemSubmissionStorage()
	handler := newSubmissionHandler(forms, subs, newMemFileStorage(), &stubNotifier{})

	payload := `{"data":{"name":"Ada"},"submitter_email":"not-an-address"}`
	req := httptest.NewRequest(http.MethodPost, "/api/forms/form_1/submit", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	handler.SubmitHandler(rec, req, "form_1")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "submitter_email")
	assert.Empty(t, subs.subs, "nothing persisted on validation failure")
}

func TestSubmitHandler_NotificationFailureNeverFailsSubmit(t *testing.T) {
	forms := newMemFormStorage()
	seedForm(t, forms)
	subs := newMemSubmissionStorage()
	notifier := &stubNotifier{}
	handler := newSubmissionHandler(forms, subs, newMemFileStorage(), notifier)

	payload := `{"data":{"name":"Ada","email":"ada@example.com"},"submitter_email":"ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/forms/form_1/submit", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	handler.SubmitHandler(rec, req, "form_1")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, notifier.confirmations)
	assert.Equal(t, 1, notifier.notifications, "owner notification attempted even though it errors")
	assert.Len(t, subs.subs, 1)
}

func TestPDFHandler_FillsAndCompletes(t *testing.T) {
	forms := newMemFormStorage()
	seedForm(t, forms)
	subs := newMemSubmissionStorage()
	files := newMemFileStorage()
	files.files["file_orig"] = []byte("%PDF-1.4 original")

	sub := &models.FormSubmission{ID: "sub_1", FormID: "form_1", Data: map[string]interface{}{"name": "Ada"}}
	require.NoError(t, subs.SaveSubmission(context.Background(), sub))

	handler := newSubmissionHandler(forms, subs, files, &stubNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/forms/form_1/submissions/sub_1/pdf", nil)
	rec := httptest.NewRecorder()
	handler.PDFHandler(rec, req, "form_1", "sub_1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Intake-submission-sub_1.pdf")
	assert.Equal(t, []byte("%PDF-1.4 completed"), rec.Body.Bytes())

	assert.Equal(t, models.SubmissionStatusCompleted, subs.subs["sub_1"].Status)
	assert.NotEmpty(t, subs.subs["sub_1"].CompletedPDFKey)
}

func TestPDFHandler_SubmissionFromOtherForm(t *testing.T) {
	forms := newMemFormStorage()
	seedForm(t, forms)
	subs := newMemSubmissionStorage()
	require.NoError(t, subs.SaveSubmission(context.Background(), &models.FormSubmission{ID: "sub_x", FormID: "form_other"}))

	handler := newSubmissionHandler(forms, subs, newMemFileStorage(), &stubNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/forms/form_1/submissions/sub_x/pdf", nil)
	rec := httptest.NewRecorder()
	handler.PDFHandler(rec, req, "form_1", "sub_x")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
