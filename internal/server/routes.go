package server

import (
	"net/http"
	"strings"

	"github.com/ternarybob/formforge/internal/handlers"
)

// setupRoutes builds the route table.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Upload boundary
	mux.HandleFunc("/api/upload", s.app.UploadHandler.UploadHandler) // POST - upload a PDF/image, create a form

	// Form records
	mux.HandleFunc("/api/forms", s.app.FormHandler.ListHandler) // GET - list forms
	mux.HandleFunc("/api/forms/", s.handleFormRoutes)           // form + submission subroutes

	// Status
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)

	return mux
}

// handleFormRoutes dispatches everything under /api/forms/{id}:
//
//	GET/PUT/DELETE /api/forms/{id}
//	GET            /api/forms/{id}/sheet
//	POST           /api/forms/{id}/submit
//	GET            /api/forms/{id}/submissions
//	GET            /api/forms/{id}/submissions/{sid}/pdf
func (s *Server) handleFormRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/forms/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		handlers.WriteError(w, http.StatusNotFound, "form id is required")
		return
	}
	formID := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.app.FormHandler.GetHandler(w, r, formID)
		case http.MethodPut:
			s.app.FormHandler.UpdateHandler(w, r, formID)
		case http.MethodDelete:
			s.app.FormHandler.DeleteHandler(w, r, formID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case len(parts) == 2 && parts[1] == "sheet":
		if handlers.RequireMethod(w, r, http.MethodGet) {
			s.app.FormHandler.SheetHandler(w, r, formID)
		}

	case len(parts) == 2 && parts[1] == "submit":
		if handlers.RequireMethod(w, r, http.MethodPost) {
			s.app.SubmissionHandler.SubmitHandler(w, r, formID)
		}

	case len(parts) == 2 && parts[1] == "submissions":
		if handlers.RequireMethod(w, r, http.MethodGet) {
			s.app.SubmissionHandler.ListHandler(w, r, formID)
		}

	case len(parts) == 4 && parts[1] == "submissions" && parts[3] == "pdf":
		if handlers.RequireMethod(w, r, http.MethodGet) {
			s.app.SubmissionHandler.PDFHandler(w, r, formID, parts[2])
		}

	default:
		handlers.WriteError(w, http.StatusNotFound, "not found")
	}
}
