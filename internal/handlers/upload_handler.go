// -----------------------------------------------------------------------
// Upload Handler - document upload boundary: accept a PDF or image,
// extract text, infer fields and always create a form record
// -----------------------------------------------------------------------

package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/common"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/ternarybob/formforge/internal/models"
)

// UploadHandler handles document uploads
type UploadHandler struct {
	config      *common.Config
	extractor   interfaces.TextExtractor
	inferencer  interfaces.FieldInferencer
	formStorage interfaces.FormStorage
	fileStorage interfaces.FileStorage
	logger      arbor.ILogger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(
	config *common.Config,
	extractor interfaces.TextExtractor,
	inferencer interfaces.FieldInferencer,
	formStorage interfaces.FormStorage,
	fileStorage interfaces.FileStorage,
	logger arbor.ILogger,
) *UploadHandler {
	return &UploadHandler{
		config:      config,
		extractor:   extractor,
		inferencer:  inferencer,
		formStorage: formStorage,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

// uploadResponse is the JSON body returned for a successful upload.
type uploadResponse struct {
	Status   string       `json:"status"`
	Form     *models.Form `json:"form"`
	Strategy string       `json:"strategy"`
	Warning  string       `json:"warning,omitempty"`
}

// UploadHandler handles POST /api/upload. The upload always produces a form
// record: extraction or inference failures degrade to fallback fields with a
// warning, never to a failed upload.
func (h *UploadHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.config.Upload.MaxSizeBytes)
	if err := r.ParseMultipartForm(h.config.Upload.MaxSizeBytes); err != nil {
		WriteError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	kind, allowed := h.classifyUpload(contentType)
	if !allowed {
		WriteError(w, http.StatusUnsupportedMediaType, "only PDF and image uploads are accepted")
		return
	}

	document, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	pdfKey := common.NewFileKey()
	if err := h.fileStorage.PutFile(r.Context(), pdfKey, document); err != nil {
		h.logger.Error().Err(err).Msg("Failed to store uploaded document")
		WriteError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	strategy := h.inferenceStrategy(r)

	text, err := h.extractor.Extract(r.Context(), document, kind, nil)
	if kind == interfaces.DocumentKindPDF && (err != nil || strings.TrimSpace(text) == "") {
		// No usable text layer. Treat the document as a scanned PDF.
		text, err = h.extractor.ExtractScanned(r.Context(), document, nil)
	}
	if err != nil {
		h.logger.Warn().Err(err).Str("filename", header.Filename).Msg("Extraction failed, inference will use empty text")
		text = ""
	}

	result, err := h.inferencer.Infer(r.Context(), text, strategy)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	form := &models.Form{
		ID:               common.NewFormID(),
		UserID:           r.FormValue("user_id"),
		Name:             name,
		OriginalFilename: header.Filename,
		PDFKey:           pdfKey,
		Schema: models.FormSchema{
			ID:     common.NewSchemaID(),
			Title:  name,
			Fields: result.Fields,
		},
	}

	if err := h.formStorage.SaveForm(r.Context(), form); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save form")
		WriteError(w, http.StatusInternalServerError, "failed to save form")
		return
	}

	h.logger.Info().
		Str("form_id", form.ID).
		Str("strategy", string(result.Strategy)).
		Int("fields", len(result.Fields)).
		Msg("Upload processed")

	WriteJSON(w, http.StatusCreated, uploadResponse{
		Status:   "success",
		Form:     form,
		Strategy: string(result.Strategy),
		Warning:  result.Warning,
	})
}

// classifyUpload maps a declared MIME type onto a document kind, rejecting
// anything outside the configured allow list.
func (h *UploadHandler) classifyUpload(contentType string) (interfaces.DocumentKind, bool) {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	permitted := false
	for _, t := range h.config.Upload.AllowedTypes {
		if t == mediaType {
			permitted = true
			break
		}
	}
	if !permitted {
		return "", false
	}

	if mediaType == "application/pdf" {
		return interfaces.DocumentKindPDF, true
	}
	return interfaces.DocumentKindImage, true
}

// inferenceStrategy resolves the strategy from the request, defaulting to the
// heuristic engine. "ai" engages the configured LLM provider.
func (h *UploadHandler) inferenceStrategy(r *http.Request) models.InferenceStrategy {
	switch r.URL.Query().Get("strategy") {
	case "ai":
		return models.StrategyAI
	case "heuristic", "":
		return models.StrategyHeuristic
	default:
		return models.StrategyHeuristic
	}
}
