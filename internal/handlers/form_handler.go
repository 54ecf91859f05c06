// -----------------------------------------------------------------------
// Form Handler - form record CRUD and the printable form sheet
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/ternarybob/formforge/internal/models"
)

// FormHandler handles form record operations
type FormHandler struct {
	formStorage interfaces.FormStorage
	filler      interfaces.PDFFiller
	logger      arbor.ILogger
}

// NewFormHandler creates a new form handler
func NewFormHandler(formStorage interfaces.FormStorage, filler interfaces.PDFFiller, logger arbor.ILogger) *FormHandler {
	return &FormHandler{
		formStorage: formStorage,
		filler:      filler,
		logger:      logger,
	}
}

// ListHandler handles GET /api/forms, optionally filtered by user_id.
func (h *FormHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	forms, err := h.formStorage.ListForms(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list forms")
		WriteError(w, http.StatusInternalServerError, "failed to list forms")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"forms":  forms,
		"count":  len(forms),
	})
}

// GetHandler handles GET /api/forms/{id}.
func (h *FormHandler) GetHandler(w http.ResponseWriter, r *http.Request, formID string) {
	form, err := h.formStorage.GetForm(r.Context(), formID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "form not found")
		return
	}
	WriteJSON(w, http.StatusOK, form)
}

// updateFormRequest carries an owner's schema edit.
type updateFormRequest struct {
	Name        string             `json:"name"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Fields      []models.FormField `json:"fields"`
}

// UpdateHandler handles PUT /api/forms/{id}. The schema is replaced wholesale
// and updated_at bumped; field ids are normalized before persisting.
func (h *FormHandler) UpdateHandler(w http.ResponseWriter, r *http.Request, formID string) {
	form, err := h.formStorage.GetForm(r.Context(), formID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "form not found")
		return
	}

	var req updateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Name != "" {
		form.Name = req.Name
	}
	if req.Title != "" {
		form.Schema.Title = req.Title
	}
	if req.Description != "" {
		form.Schema.Description = req.Description
	}
	if req.Fields != nil {
		form.Schema.Fields = models.Normalize(req.Fields)
	}
	form.Schema.UpdatedAt = time.Now()

	if err := h.formStorage.SaveForm(r.Context(), form); err != nil {
		h.logger.Error().Err(err).Str("form_id", formID).Msg("Failed to update form")
		WriteError(w, http.StatusInternalServerError, "failed to update form")
		return
	}

	WriteJSON(w, http.StatusOK, form)
}

// DeleteHandler handles DELETE /api/forms/{id}.
func (h *FormHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, formID string) {
	if err := h.formStorage.DeleteForm(r.Context(), formID); err != nil {
		h.logger.Error().Err(err).Str("form_id", formID).Msg("Failed to delete form")
		WriteError(w, http.StatusInternalServerError, "failed to delete form")
		return
	}
	WriteSuccess(w, "form deleted")
}

// SheetHandler handles GET /api/forms/{id}/sheet, serving a printable blank
// rendition of the schema.
func (h *FormHandler) SheetHandler(w http.ResponseWriter, r *http.Request, formID string) {
	form, err := h.formStorage.GetForm(r.Context(), formID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "form not found")
		return
	}

	sheet, err := h.filler.BuildFormSheet(&form.Schema)
	if err != nil {
		h.logger.Error().Err(err).Str("form_id", formID).Msg("Failed to build form sheet")
		WriteError(w, http.StatusInternalServerError, "failed to build form sheet")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", form.Name+"-blank.pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(sheet)
}
