package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"troop-fundraiser/models"
	"troop-fundraiser/session"
)

// AdminAuthService checks dashboard passwords against a static list and keeps the login in the session
type AdminAuthService struct {
	passwords []string
	now       func() time.Time
}

// NewAdminAuthService creates a new AdminAuthService
func NewAdminAuthService(passwords []string) *AdminAuthService {
	cleaned := make([]string, 0, len(passwords))
	for _, p := range passwords {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		log.Printf("⚠️ AdminAuthService: no admin passwords configured, dashboard login is disabled")
	}
	return &AdminAuthService{passwords: cleaned, now: time.Now}
}

// Login starts an admin session when the password matches one of the configured passwords
func (s *AdminAuthService) Login(ctx context.Context, values session.Values, req *models.LoginRequest) (*models.AdminUser, error) {
	if !s.matches(req.Password) {
		log.Printf("⚠️ AdminAuthService.Login: rejected login for %q", req.Name)
		return nil, ErrUnauthorized
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "admin"
	}
	user := &models.AdminUser{
		Token:    uuid.New().String(),
		Name:     name,
		LoggedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := session.SetJSON(ctx, values, session.KeyAdminUser, user); err != nil {
		return nil, fmt.Errorf("failed to start admin session: %w", err)
	}
	log.Printf("✅ AdminAuthService.Login: %s logged in", name)
	return user, nil
}

// Logout ends the admin session
func (s *AdminAuthService) Logout(ctx context.Context, values session.Values) error {
	return values.Delete(ctx, session.KeyAdminUser)
}

// CurrentUser returns the logged-in admin, or nil
func (s *AdminAuthService) CurrentUser(ctx context.Context, values session.Values) (*models.AdminUser, error) {
	var user models.AdminUser
	found, err := session.GetJSON(ctx, values, session.KeyAdminUser, &user)
	if err != nil || !found || user.Token == "" {
		return nil, err
	}
	return &user, nil
}

func (s *AdminAuthService) matches(password string) bool {
	matched := 0
	for _, candidate := range s.passwords {
		matched |= subtle.ConstantTimeCompare([]byte(candidate), []byte(password))
	}
	return matched == 1
}
