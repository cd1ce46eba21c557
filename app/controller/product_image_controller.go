package controller

import (
	"log"
	"net/http"
	"strings"

	"troop-fundraiser/service"
)

// ProductImageController serves product images and syncs them from Google Drive
type ProductImageController struct {
	images        *service.ProductImageService
	driveFolderID string
}

// NewProductImageController creates a new ProductImageController
func NewProductImageController(images *service.ProductImageService, driveFolderID string) *ProductImageController {
	return &ProductImageController{images: images, driveFolderID: driveFolderID}
}

// GetImage handles GET /api/products/{id}/image?size=thumb|medium
func (c *ProductImageController) GetImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productID := pathParam(r.URL.Path, "/api/products/")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product id is required")
		return
	}
	size := r.URL.Query().Get("size")
	if size == "" {
		size = service.SizeMedium
	}

	data, err := c.images.Image(r.Context(), productID, size)
	if err != nil {
		writeServiceError(w, "GetImage", err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// SyncImages handles POST /admin/images/sync?folderId=...
// Downloads product images from the Drive folder (DRIVE_FOLDER_ID by default) into PRODUCT_IMAGE_DIR
// Example response:
// {"total": 3, "downloaded": 2, "skipped": 1}
func (c *ProductImageController) SyncImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	folderID := strings.TrimSpace(r.URL.Query().Get("folderId"))
	if folderID == "" {
		folderID = c.driveFolderID
	}
	if folderID == "" {
		writeError(w, http.StatusBadRequest, "folderId is required (or set DRIVE_FOLDER_ID)")
		return
	}

	log.Printf("📥 SyncImages: request received for folder %s", folderID)
	result, err := c.images.SyncFromDrive(r.Context(), folderID)
	if err != nil {
		log.Printf("❌ SyncImages: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	log.Printf("✅ SyncImages: %d/%d images downloaded", result.Downloaded, result.Total)
	writeJSON(w, http.StatusOK, result)
}
