package app

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Backend names accepted by DATA_BACKEND
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
	BackendSheets = "sheets"
)

// Config is the environment-driven application configuration
type Config struct {
	Env             string
	Port            string
	BaseURL         string
	DataBackend     string
	ScriptURL       string
	SpreadsheetID   string
	CredentialsPath string
	DriveFolderID   string
	SessionStore    string
	AdminPasswords  []string
	ResendAPIKey    string
	EmailFrom       string
	CSRFKey         []byte
	ProductImageDir string
	ImageCacheDir   string
	OrderIDNode     int64
	ChromePath      string
}

// IsProduction reports whether ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig reads the configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env:             os.Getenv("ENV"),
		Port:            strings.TrimPrefix(getEnv("PORT", "8080"), ":"), // PORT from Render doesn't include the colon
		BaseURL:         strings.TrimRight(os.Getenv("BASE_URL"), "/"),
		DataBackend:     strings.ToLower(getEnv("DATA_BACKEND", BackendLocal)),
		ScriptURL:       os.Getenv("SCRIPT_URL"),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		CredentialsPath: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DriveFolderID:   os.Getenv("DRIVE_FOLDER_ID"),
		SessionStore:    strings.ToLower(getEnv("SESSION_STORE", "sql")),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		EmailFrom:       getEnv("EMAIL_FROM", "Pack Fundraiser <fundraiser@example.com>"),
		ProductImageDir: getEnv("PRODUCT_IMAGE_DIR", "images"),
		ImageCacheDir:   getEnv("IMAGE_CACHE_DIR", "cache/images"),
		ChromePath:      os.Getenv("CHROME_PATH"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	for _, p := range strings.Split(os.Getenv("ADMIN_PASSWORDS"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.AdminPasswords = append(cfg.AdminPasswords, p)
		}
	}

	node, err := strconv.ParseInt(getEnv("ORDER_ID_NODE", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ORDER_ID_NODE must be a number: %w", err)
	}
	cfg.OrderIDNode = node

	// gorilla/csrf needs exactly 32 bytes; any other secret is hashed down to that size
	key := os.Getenv("CSRF_KEY")
	switch {
	case len(key) == 32:
		cfg.CSRFKey = []byte(key)
	case key != "":
		sum := sha256.Sum256([]byte(key))
		cfg.CSRFKey = sum[:]
	case cfg.IsProduction():
		return nil, fmt.Errorf("CSRF_KEY environment variable is not set")
	default:
		sum := sha256.Sum256([]byte("troop-fundraiser-development"))
		cfg.CSRFKey = sum[:]
	}

	switch cfg.DataBackend {
	case BackendLocal:
	case BackendRemote:
		if cfg.ScriptURL == "" {
			return nil, fmt.Errorf("SCRIPT_URL environment variable is not set")
		}
	case BackendSheets:
		if cfg.SpreadsheetID == "" {
			return nil, fmt.Errorf("SPREADSHEET_ID environment variable is not set")
		}
		if cfg.CredentialsPath == "" {
			return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS environment variable is not set")
		}
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q (expected local, remote or sheets)", cfg.DataBackend)
	}

	if cfg.SessionStore != "sql" && cfg.SessionStore != "memory" {
		return nil, fmt.Errorf("unknown SESSION_STORE %q (expected sql or memory)", cfg.SessionStore)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
