package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"

	"troop-fundraiser/models"
	"troop-fundraiser/repository"
)

//go:embed defaults/site_config.yaml
var defaultSiteConfigYAML []byte

const configCacheTTL = 30 * time.Second

// ParseSiteConfigYAML decodes a YAML site configuration document.
// The document goes through JSON so the models only carry json tags.
func ParseSiteConfigYAML(data []byte) (*models.SiteConfig, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse site config yaml: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert site config: %w", err)
	}
	var cfg models.SiteConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode site config: %w", err)
	}
	return &cfg, nil
}

// DefaultSiteConfig returns a fresh copy of the bundled configuration
func DefaultSiteConfig() (*models.SiteConfig, error) {
	return ParseSiteConfigYAML(defaultSiteConfigYAML)
}

// ConfigService loads, validates and saves the site configuration
type ConfigService struct {
	backend  repository.DataBackendInterface
	markdown goldmark.Markdown
	now      func() time.Time

	mu       sync.Mutex
	cached   *models.SiteConfig
	cachedAt time.Time
}

// NewConfigService creates a new ConfigService
func NewConfigService(backend repository.DataBackendInterface) *ConfigService {
	return &ConfigService{
		backend:  backend,
		markdown: goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps())),
		now:      time.Now,
	}
}

// Get returns the active configuration.
// The bundled default is used until an administrator saves one, and whenever the stored document fails validation.
func (s *ConfigService) Get(ctx context.Context) (*models.SiteConfig, error) {
	s.mu.Lock()
	if s.cached != nil && s.now().Sub(s.cachedAt) < configCacheTTL {
		cfg := s.cached
		s.mu.Unlock()
		return cfg, nil
	}
	s.mu.Unlock()

	cfg, err := s.backend.GetConfig(ctx)
	if err != nil {
		log.Printf("⚠️ ConfigService.Get: failed to load stored config, using defaults: %v", err)
		cfg = nil
	}
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			log.Printf("⚠️ ConfigService.Get: stored config is invalid, using defaults: %v", err)
			cfg = nil
		}
	}
	if cfg == nil {
		if cfg, err = DefaultSiteConfig(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.cached = cfg
	s.cachedAt = s.now()
	s.mu.Unlock()
	return cfg, nil
}

// Save validates and replaces the whole configuration document
func (s *ConfigService) Save(ctx context.Context, cfg *models.SiteConfig) error {
	if cfg.Version == 0 {
		cfg.Version = models.CurrentConfigVersion
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.backend.SaveConfig(ctx, cfg); err != nil {
		log.Printf("❌ ConfigService.Save: %v", err)
		return fmt.Errorf("failed to save config: %w", err)
	}

	s.mu.Lock()
	s.cached = cfg
	s.cachedAt = s.now()
	s.mu.Unlock()

	log.Printf("✅ ConfigService.Save: site configuration saved (%d products)", len(cfg.Products))
	return nil
}

// Public returns the storefront view with markdown rendered
func (s *ConfigService) Public(ctx context.Context) (*models.PublicSiteConfig, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	public := &models.PublicSiteConfig{
		Campaign:     cfg.Campaign,
		CampaignOpen: cfg.CampaignOpen(s.now()),
		Pack:         cfg.Pack,
		Products:     cfg.ActiveProducts(),
		HeroTitle:    cfg.Content.HeroTitle,
		HeroHTML:     s.RenderMarkdown(cfg.Content.HeroBody),
		Disclaimers:  cfg.Content.Disclaimers,
		Payment:      s.PaymentView(cfg),
	}
	if cfg.DonationsEnabled() {
		public.Donation = cfg.Donation
	}
	for _, entry := range cfg.Content.FAQ {
		public.FAQ = append(public.FAQ, models.FAQEntryHTML{
			Question:   entry.Question,
			AnswerHTML: s.RenderMarkdown(entry.Answer),
		})
	}
	return public, nil
}

// PaymentView renders the payment instructions section, or nil when none are configured
func (s *ConfigService) PaymentView(cfg *models.SiteConfig) *models.PaymentView {
	if cfg.Payment == nil {
		return nil
	}
	return &models.PaymentView{
		Venmo:            cfg.Payment.Venmo,
		PayPal:           cfg.Payment.PayPal,
		CheckPayableTo:   cfg.Payment.CheckPayableTo,
		InstructionsHTML: s.RenderMarkdown(cfg.Payment.Instructions),
	}
}

// RenderMarkdown converts a content block to HTML. Rendering errors yield an empty string.
func (s *ConfigService) RenderMarkdown(source string) string {
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(source), &buf); err != nil {
		log.Printf("⚠️ ConfigService.RenderMarkdown: %v", err)
		return ""
	}
	return buf.String()
}
