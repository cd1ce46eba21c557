package controller

import (
	"log"
	"net/http"
	"strings"

	"troop-fundraiser/service"
	"troop-fundraiser/session"
)

// StorefrontController handles the public catalog and attribution endpoints
type StorefrontController struct {
	config      *service.ConfigService
	attribution *service.AttributionService
	leaderboard *service.LeaderboardService
}

// NewStorefrontController creates a new StorefrontController
func NewStorefrontController(config *service.ConfigService, attribution *service.AttributionService, leaderboard *service.LeaderboardService) *StorefrontController {
	return &StorefrontController{config: config, attribution: attribution, leaderboard: leaderboard}
}

// GetConfig handles GET /api/config
// Example response:
// {
//   "campaign": {"name": "Fall Popcorn Sale"},
//   "campaignOpen": true,
//   "pack": {"name": "Cub Scout Pack 42"},
//   "products": [{"id": "caramel-corn", "name": "Caramel Corn", "price": 35.00, "active": true}],
//   "heroHtml": "<p>Every purchase sends our scouts to <strong>summer camp</strong>.</p>"
// }
func (c *StorefrontController) GetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	public, err := c.config.Public(r.Context())
	if err != nil {
		writeServiceError(w, "GetConfig", err)
		return
	}
	writeJSON(w, http.StatusOK, public)
}

// ListProducts handles GET /api/products
func (c *StorefrontController) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg, err := c.config.Get(r.Context())
	if err != nil {
		writeServiceError(w, "ListProducts", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.ActiveProducts())
}

// Attribution handles GET /api/attribution?scout={slug} and DELETE /api/attribution.
// The storefront calls GET on every navigation with the scout parameter of the current URL.
// Example response for an unknown slug (notice is only present the first time):
// {
//   "attribution": {"scoutId": "__unresolved__", "slug": "sam-rivra"},
//   "notice": "We couldn't find the scout from your link, ..."
// }
func (c *StorefrontController) Attribution(w http.ResponseWriter, r *http.Request) {
	values := session.FromRequest(r)

	switch r.Method {
	case http.MethodGet:
		slug := strings.TrimSpace(r.URL.Query().Get("scout"))
		if slug != "" {
			log.Printf("📥 Attribution: referral slug %q", slug)
		}
		resp, err := c.attribution.Resolve(r.Context(), values, slug)
		if err != nil {
			writeServiceError(w, "Attribution", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodDelete:
		if err := c.attribution.Clear(r.Context(), values); err != nil {
			writeServiceError(w, "Attribution", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Leaderboard handles GET /api/leaderboard
func (c *StorefrontController) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp, err := c.leaderboard.Standings(r.Context())
	if err != nil {
		log.Printf("❌ Leaderboard: %v", err)
		writeUnavailable(w, "leaderboard is temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
