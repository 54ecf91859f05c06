// -----------------------------------------------------------------------
// Submission Handler - accept submissions against a form and serve the
// completed PDF
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/common"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/ternarybob/formforge/internal/models"
	"github.com/ternarybob/formforge/internal/services/validation"
)

// SubmissionHandler handles form submissions and completed-PDF downloads
type SubmissionHandler struct {
	formStorage       interfaces.FormStorage
	submissionStorage interfaces.SubmissionStorage
	fileStorage       interfaces.FileStorage
	filler            interfaces.PDFFiller
	notifier          interfaces.Notifier
	ownerEmail        string
	logger            arbor.ILogger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(
	formStorage interfaces.FormStorage,
	submissionStorage interfaces.SubmissionStorage,
	fileStorage interfaces.FileStorage,
	filler interfaces.PDFFiller,
	notifier interfaces.Notifier,
	ownerEmail string,
	logger arbor.ILogger,
) *SubmissionHandler {
	return &SubmissionHandler{
		formStorage:       formStorage,
		submissionStorage: submissionStorage,
		fileStorage:       fileStorage,
		filler:            filler,
		notifier:          notifier,
		ownerEmail:        ownerEmail,
		logger:            logger,
	}
}

// submitRequest is the body of POST /api/forms/{id}/submit.
type submitRequest struct {
	Data           map[string]interface{} `json:"data"`
	SubmitterEmail string                 `json:"submitter_email"`
}

var validate = validator.New()

// SubmitHandler handles POST /api/forms/{id}/submit. The data is validated
// against the renderer contract; notifications are best effort and never
// fail the submit.
func (h *SubmissionHandler) SubmitHandler(w http.ResponseWriter, r *http.Request, formID string) {
	form, err := h.formStorage.GetForm(r.Context(), formID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "form not found")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	errs := validation.ValidateSubmission(&form.Schema, req.Data)
	if req.SubmitterEmail != "" {
		if err := validate.Var(req.SubmitterEmail, "email"); err != nil {
			errs = append(errs, validation.FieldError{
				FieldID: "submitter_email",
				Message: "submitter_email must be a valid email address",
			})
		}
	}
	if len(errs) > 0 {
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"status": "error",
			"error":  "validation failed",
			"fields": errs,
		})
		return
	}

	sub := &models.FormSubmission{
		ID:             common.NewSubmissionID(),
		FormID:         form.ID,
		Data:           req.Data,
		SubmitterEmail: req.SubmitterEmail,
		Status:         models.SubmissionStatusPending,
	}

	if err := h.submissionStorage.SaveSubmission(r.Context(), sub); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save submission")
		WriteError(w, http.StatusInternalServerError, "failed to save submission")
		return
	}

	h.notify(r, form, sub)

	h.logger.Info().Str("submission_id", sub.ID).Str("form_id", form.ID).Msg("Submission accepted")
	WriteJSON(w, http.StatusCreated, sub)
}

// notify sends best-effort confirmation and owner emails.
func (h *SubmissionHandler) notify(r *http.Request, form *models.Form, sub *models.FormSubmission) {
	if sub.SubmitterEmail != "" {
		if err := h.notifier.SendSubmitterConfirmation(r.Context(), sub.SubmitterEmail, form.Name, sub.ID, sub.SubmittedAt); err != nil {
			h.logger.Warn().Err(err).Str("to", sub.SubmitterEmail).Msg("Submitter confirmation email failed")
		}
	}
	if h.ownerEmail != "" {
		if err := h.notifier.SendOwnerNotification(r.Context(), h.ownerEmail, form.Name, sub.ID, sub.Data); err != nil {
			h.logger.Warn().Err(err).Str("to", h.ownerEmail).Msg("Owner notification email failed")
		}
	}
}

// ListHandler handles GET /api/forms/{id}/submissions.
func (h *SubmissionHandler) ListHandler(w http.ResponseWriter, r *http.Request, formID string) {
	subs, err := h.submissionStorage.ListSubmissions(r.Context(), formID)
	if err != nil {
		h.logger.Error().Err(err).Str("form_id", formID).Msg("Failed to list submissions")
		WriteError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"submissions": subs,
		"count":       len(subs),
	})
}

// PDFHandler handles GET /api/forms/{id}/submissions/{sid}/pdf: fill the
// original document with the submitted values, persist the result, flip the
// submission to completed and serve the bytes.
func (h *SubmissionHandler) PDFHandler(w http.ResponseWriter, r *http.Request, formID, submissionID string) {
	form, err := h.formStorage.GetForm(r.Context(), formID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "form not found")
		return
	}

	sub, err := h.submissionStorage.GetSubmission(r.Context(), submissionID)
	if err != nil || sub.FormID != form.ID {
		WriteError(w, http.StatusNotFound, "submission not found")
		return
	}

	// Serve the stored artifact when the fill already ran.
	if sub.CompletedPDFKey != "" {
		if stored, err := h.fileStorage.GetFile(r.Context(), sub.CompletedPDFKey); err == nil {
			h.servePDF(w, form, sub, stored)
			return
		}
	}

	original, err := h.fileStorage.GetFile(r.Context(), form.PDFKey)
	if err != nil {
		h.logger.Warn().Err(err).Str("form_id", formID).Msg("Original PDF missing, fill will synthesize")
		original = nil
	}

	completed, err := h.filler.Fill(r.Context(), original, &form.Schema, sub)
	if err != nil {
		h.logger.Error().Err(err).Str("submission_id", submissionID).Msg("PDF fill failed")
		WriteError(w, http.StatusInternalServerError, "failed to produce completed PDF")
		return
	}

	key := common.NewFileKey()
	if err := h.fileStorage.PutFile(r.Context(), key, completed); err != nil {
		h.logger.Error().Err(err).Msg("Failed to store completed PDF")
		WriteError(w, http.StatusInternalServerError, "failed to store completed PDF")
		return
	}

	sub.CompletedPDFKey = key
	sub.Status = models.SubmissionStatusCompleted
	if err := h.submissionStorage.SaveSubmission(r.Context(), sub); err != nil {
		h.logger.Error().Err(err).Msg("Failed to update submission status")
		WriteError(w, http.StatusInternalServerError, "failed to update submission")
		return
	}

	h.servePDF(w, form, sub, completed)
}

func (h *SubmissionHandler) servePDF(w http.ResponseWriter, form *models.Form, sub *models.FormSubmission, data []byte) {
	filename := fmt.Sprintf("%s-submission-%s.pdf", form.Name, sub.ID)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
