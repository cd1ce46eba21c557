package router

import (
	"net/http"
	"strings"

	"troop-fundraiser/app/controller"
)

type Controllers struct {
	Storefront   *controller.StorefrontController
	Cart         *controller.CartController
	ProductImage *controller.ProductImageController
	AdminAuth    *controller.AdminAuthController
	Scout        *controller.ScoutController
	Order        *controller.OrderController
	Config       *controller.ConfigController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every route on a new mux. requireAdmin guards the /admin routes except login.
func SetupRoutes(controllers *Controllers, requireAdmin func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	admin := func(h http.HandlerFunc) http.Handler {
		return requireAdmin(h)
	}

	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Storefront routes
	mux.HandleFunc("/api/config", controllers.Storefront.GetConfig)
	mux.HandleFunc("/api/products", controllers.Storefront.ListProducts)
	mux.HandleFunc("/api/attribution", controllers.Storefront.Attribution)
	mux.HandleFunc("/api/leaderboard", controllers.Storefront.Leaderboard)

	// Product image: /api/products/{id}/image
	mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/image") {
			controllers.ProductImage.GetImage(w, r)
			return
		}
		http.Error(w, "Not found", http.StatusNotFound)
	})

	// Cart and checkout routes
	mux.HandleFunc("/api/cart", controllers.Cart.Cart)
	mux.HandleFunc("/api/cart/items", controllers.Cart.AddItem)
	mux.HandleFunc("/api/cart/items/", controllers.Cart.Item)
	mux.HandleFunc("/api/checkout", controllers.Cart.Checkout)
	mux.HandleFunc("/api/checkout/confirmation", controllers.Cart.Confirmation)

	// Admin login is the only admin route open without a session
	mux.HandleFunc("/admin/login", controllers.AdminAuth.Login)
	mux.Handle("/admin/logout", admin(controllers.AdminAuth.Logout))

	// Scouts routes
	mux.Handle("/admin/scouts", admin(controllers.Scout.Scouts))
	mux.Handle("/admin/scouts/import", admin(controllers.Scout.Import))
	mux.Handle("/admin/scouts/", admin(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/admin/scouts/")
		if strings.HasSuffix(path, "/flyer") {
			controllers.Scout.Flyer(w, r)
			return
		}
		if path == "" || strings.Contains(path, "/") {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		controllers.Scout.Scout(w, r)
	}))

	// Orders routes (export must be matched before the generic /:id route)
	mux.Handle("/admin/orders", admin(controllers.Order.Orders))
	mux.Handle("/admin/orders/export", admin(controllers.Order.Export))
	mux.Handle("/admin/orders/", admin(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/admin/orders/")
		if strings.HasSuffix(path, "/status") {
			controllers.Order.UpdateStatus(w, r)
			return
		}
		if path == "" || strings.Contains(path, "/") {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		controllers.Order.Order(w, r)
	}))

	// Site configuration and images
	mux.Handle("/admin/config", admin(controllers.Config.Config))
	mux.Handle("/admin/images/sync", admin(controllers.ProductImage.SyncImages))

	return mux
}
