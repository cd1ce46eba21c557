package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"troop-fundraiser/app/controller"
	"troop-fundraiser/app/middleware"
	"troop-fundraiser/app/router"
	"troop-fundraiser/db"
	"troop-fundraiser/repository"
	"troop-fundraiser/service"
	"troop-fundraiser/session"
)

const (
	sessionMaxIdle    = 24 * time.Hour
	sessionPruneEvery = time.Hour
)

// App holds the wired services and the HTTP handler
type App struct {
	Config   *Config
	Backend  repository.DataBackendInterface
	Sessions session.Store
	Scouts   *service.ScoutService
	Orders   *service.OrderService
	Exports  *service.ExportService
	Handler  http.Handler
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *Config) (*App, error) {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("💾 Data backend: %s", backend.Name())

	var sessions session.Store = session.NewMemoryStore()
	if cfg.SessionStore == "sql" {
		sessions = session.NewSQLStore(db.DB, db.Current)
	}

	// Drive is optional; without it product images come from PRODUCT_IMAGE_DIR only
	var drive service.DriveServiceInterface
	if cfg.CredentialsPath != "" {
		driveService, err := service.NewDriveService(ctx, cfg.CredentialsPath)
		if err != nil {
			log.Printf("⚠️ Google Drive unavailable: %v", err)
		} else {
			drive = driveService
		}
	}

	var sender service.EmailSenderInterface = &service.NoopSender{}
	if cfg.ResendAPIKey != "" {
		sender = service.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		log.Printf("⚠️ RESEND_API_KEY is not set, emails will only be logged")
	}

	ids, err := service.NewSnowflakeOrderIDs(cfg.OrderIDNode)
	if err != nil {
		return nil, err
	}
	imageCache, err := service.NewImageCache(cfg.ImageCacheDir)
	if err != nil {
		return nil, err
	}

	// Initialize services
	configService := service.NewConfigService(backend)
	scoutService := service.NewScoutService(backend)
	orderService := service.NewOrderService(backend, scoutService, configService, ids)
	cartService := service.NewCartService(configService)
	attributionService := service.NewAttributionService(scoutService)
	emailService := service.NewEmailService(sender, scoutService, configService)
	checkoutService := service.NewCheckoutService(backend, cartService, attributionService, configService, ids, emailService)
	leaderboardService := service.NewLeaderboardService(scoutService, orderService)
	authService := service.NewAdminAuthService(cfg.AdminPasswords)
	imageService := service.NewProductImageService(configService, drive, cfg.ProductImageDir, imageCache)
	exportService := service.NewExportService(orderService, scoutService)
	flyerService, err := service.NewFlyerService(scoutService, configService, imageService, cfg.BaseURL, cfg.ChromePath)
	if err != nil {
		return nil, err
	}

	// Create controllers
	controllers := &router.Controllers{
		Storefront:   controller.NewStorefrontController(configService, attributionService, leaderboardService),
		Cart:         controller.NewCartController(cartService, checkoutService),
		ProductImage: controller.NewProductImageController(imageService, cfg.DriveFolderID),
		AdminAuth:    controller.NewAdminAuthController(authService),
		Scout:        controller.NewScoutController(scoutService, flyerService, exportService),
		Order:        controller.NewOrderController(orderService, exportService),
		Config:       controller.NewConfigController(configService),
	}

	// Setup routes using standard http router
	mux := router.SetupRoutes(controllers, middleware.RequireAdmin(authService))
	secure := cfg.IsProduction()
	handler := middleware.Chain(mux,
		middleware.Logging,
		middleware.Session(sessions, secure),
		middleware.CSRF(cfg.CSRFKey, secure, trustedOrigins(cfg)),
	)

	return &App{
		Config:   cfg,
		Backend:  backend,
		Sessions: sessions,
		Scouts:   scoutService,
		Orders:   orderService,
		Exports:  exportService,
		Handler:  handler,
	}, nil
}

// newBackend builds the configured data backend. Remote and sheets backends fall back to the local store.
func newBackend(ctx context.Context, cfg *Config) (repository.DataBackendInterface, error) {
	local := repository.NewLocalBackend(repository.NewKVStore(db.DB, db.Current))

	switch cfg.DataBackend {
	case BackendRemote:
		return repository.NewFallbackBackend(repository.NewRemoteBackend(cfg.ScriptURL, nil), local), nil
	case BackendSheets:
		values, err := repository.NewGoogleSheetValues(ctx, cfg.CredentialsPath, cfg.SpreadsheetID)
		if err != nil {
			return nil, err
		}
		return repository.NewFallbackBackend(repository.NewSheetsBackend(values), local), nil
	}
	return local, nil
}

func trustedOrigins(cfg *Config) []string {
	origins := []string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port}
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		origins = append(origins, u.Host)
	}
	return origins
}

// PruneSessions drops idle sessions every hour until ctx is done
func (a *App) PruneSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionPruneEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.Sessions.Prune(ctx, sessionMaxIdle)
			if err != nil {
				log.Printf("⚠️ PruneSessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("🗑️ PruneSessions: removed %d idle session(s)", n)
			}
		}
	}
}

// Close releases the database connection
func (a *App) Close() error {
	return db.CloseDB()
}
