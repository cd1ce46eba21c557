package controller

import (
	"log"
	"net/http"
	"strings"

	"troop-fundraiser/models"
	"troop-fundraiser/service"
)

const maxRosterUpload = 10 << 20

// ScoutController handles HTTP requests for the roster
type ScoutController struct {
	scouts  *service.ScoutService
	flyers  *service.FlyerService
	exports *service.ExportService
}

// NewScoutController creates a new ScoutController
func NewScoutController(scouts *service.ScoutService, flyers *service.FlyerService, exports *service.ExportService) *ScoutController {
	return &ScoutController{scouts: scouts, flyers: flyers, exports: exports}
}

// Scouts handles GET /admin/scouts and POST /admin/scouts
// Example request:
// POST /admin/scouts
// {
//   "name": "Sam Rivera",
//   "rank": "wolf",
//   "parentName": "Ana Rivera",
//   "parentEmails": ["ana@example.com"],
//   "active": true
// }
// Example response (201):
// {"id": "4b1c...", "name": "Sam Rivera", "slug": "sam-rivera", "rank": "wolf", ...}
func (c *ScoutController) Scouts(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Scouts: Received %s request to %s", r.Method, r.URL.Path)

	switch r.Method {
	case http.MethodGet:
		scouts, err := c.scouts.List(r.Context())
		if err != nil {
			log.Printf("❌ Scouts: %v", err)
			writeUnavailable(w, "roster could not be loaded")
			return
		}
		writeJSON(w, http.StatusOK, models.ScoutListResponse{Scouts: scouts})
	case http.MethodPost:
		var req models.SaveScoutRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		scout, err := c.scouts.Create(r.Context(), &req)
		if err != nil {
			writeServiceError(w, "CreateScout", err)
			return
		}
		writeJSON(w, http.StatusCreated, scout)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Scout handles PUT /admin/scouts/{id} and DELETE /admin/scouts/{id}.
// A changed slug needs "confirmSlugChange": true since printed links stop working.
func (c *ScoutController) Scout(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r.URL.Path, "/admin/scouts/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "scout id is required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req models.SaveScoutRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		scout, err := c.scouts.Update(r.Context(), id, &req)
		if err != nil {
			writeServiceError(w, "UpdateScout", err)
			return
		}
		writeJSON(w, http.StatusOK, scout)
	case http.MethodDelete:
		if err := c.scouts.Delete(r.Context(), id); err != nil {
			writeServiceError(w, "DeleteScout", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Flyer handles GET /admin/scouts/{id}/flyer?format=html|pdf
func (c *ScoutController) Flyer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := pathParam(r.URL.Path, "/admin/scouts/")
	format := strings.ToLower(r.URL.Query().Get("format"))

	if format == "pdf" {
		pdf, err := c.flyers.GeneratePDF(r.Context(), id)
		if err != nil {
			writeServiceError(w, "Flyer", err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="flyer-`+id+`.pdf"`)
		w.WriteHeader(http.StatusOK)
		w.Write(pdf)
		return
	}

	html, err := c.flyers.RenderHTML(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Flyer", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// Import handles POST /admin/scouts/import with a multipart "file" field holding an XLSX roster
// Example response:
// {"total": 12, "imported": 11, "skipped": 1, "errors": ["row 5 (Lee Chen): validation failed: ..."]}
func (c *ScoutController) Import(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Import: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxRosterUpload); err != nil {
		writeError(w, http.StatusBadRequest, "expected a multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	log.Printf("📋 Import: roster file %s (%d bytes)", header.Filename, header.Size)

	result, err := c.exports.ImportRoster(r.Context(), file)
	if err != nil {
		log.Printf("❌ Import: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
