package controller

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"troop-fundraiser/models"
	"troop-fundraiser/service"
	"troop-fundraiser/session"
)

// AdminAuthController handles dashboard login and logout
type AdminAuthController struct {
	auth *service.AdminAuthService
}

// NewAdminAuthController creates a new AdminAuthController
func NewAdminAuthController(auth *service.AdminAuthService) *AdminAuthController {
	return &AdminAuthController{auth: auth}
}

// Login handles GET /admin/login and POST /admin/login.
// GET returns the CSRF token for the login form and the current admin, if any.
// POST accepts a JSON body or a form post carrying the gorilla.csrf.Token field.
// Example request:
// POST /admin/login
// {"name": "Cubmaster", "password": "..."}
func (c *AdminAuthController) Login(w http.ResponseWriter, r *http.Request) {
	values := session.FromRequest(r)

	switch r.Method {
	case http.MethodGet:
		user, err := c.auth.CurrentUser(r.Context(), values)
		if err != nil {
			writeServiceError(w, "Login", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"csrfToken": csrf.Token(r),
			"user":      user,
		})
	case http.MethodPost:
		log.Printf("📥 Login: Received %s request to %s", r.Method, r.URL.Path)
		var req models.LoginRequest
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				writeError(w, http.StatusBadRequest, "invalid form")
				return
			}
			req.Name = r.PostFormValue("name")
			req.Password = r.PostFormValue("password")
		}

		user, err := c.auth.Login(r.Context(), values, &req)
		if err != nil {
			writeServiceError(w, "Login", err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Logout handles POST /admin/logout
func (c *AdminAuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := c.auth.Logout(r.Context(), session.FromRequest(r)); err != nil {
		writeServiceError(w, "Logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
