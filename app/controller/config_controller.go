package controller

import (
	"log"
	"net/http"

	"troop-fundraiser/models"
	"troop-fundraiser/service"
)

// ConfigController handles reading and replacing the site configuration
type ConfigController struct {
	config *service.ConfigService
}

// NewConfigController creates a new ConfigController
func NewConfigController(config *service.ConfigService) *ConfigController {
	return &ConfigController{config: config}
}

// Config handles GET /admin/config and PUT /admin/config.
// PUT replaces the whole document; invalid documents are rejected with field errors.
func (c *ConfigController) Config(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := c.config.Get(r.Context())
		if err != nil {
			log.Printf("❌ Config: %v", err)
			writeUnavailable(w, "configuration could not be loaded")
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	case http.MethodPut:
		log.Printf("📥 Config: Received %s request to %s", r.Method, r.URL.Path)
		var cfg models.SiteConfig
		if err := decodeJSON(r, &cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := c.config.Save(r.Context(), &cfg); err != nil {
			writeServiceError(w, "SaveConfig", err)
			return
		}
		writeJSON(w, http.StatusOK, &cfg)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
