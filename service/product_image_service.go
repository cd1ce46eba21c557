package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"troop-fundraiser/models"
)

// ErrImageNotFound is returned when a product has no image source
var ErrImageNotFound = errors.New("product image not found")

// ImageSyncResult summarizes a Drive folder sync
type ImageSyncResult struct {
	Total      int      `json:"total"`
	Downloaded int      `json:"downloaded"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// ProductImageService serves optimized product images from PRODUCT_IMAGE_DIR or Google Drive
type ProductImageService struct {
	config   *ConfigService
	drive    DriveServiceInterface
	imageDir string
	cache    *ImageCache
	group    singleflight.Group
}

// NewProductImageService creates a new ProductImageService. drive may be nil when Drive is not configured.
func NewProductImageService(config *ConfigService, drive DriveServiceInterface, imageDir string, cache *ImageCache) *ProductImageService {
	return &ProductImageService{config: config, drive: drive, imageDir: imageDir, cache: cache}
}

// Image returns the optimized JPEG for a product. Concurrent requests for the same image share one optimization.
func (s *ProductImageService) Image(ctx context.Context, productID, size string) ([]byte, error) {
	if size != SizeThumb {
		size = SizeMedium
	}
	if data, ok := s.cache.Read(productID, size); ok {
		return data, nil
	}

	v, err, _ := s.group.Do(productID+"/"+size, func() (interface{}, error) {
		cfg, err := s.config.Get(ctx)
		if err != nil {
			return nil, err
		}
		product, ok := cfg.FindProduct(productID)
		if !ok {
			return nil, models.ErrProductNotFound
		}

		source, err := s.loadSource(ctx, product)
		if err != nil {
			return nil, err
		}
		optimized, err := OptimizeImage(source, size)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Write(productID, size, optimized); err != nil {
			log.Printf("⚠️ ProductImageService.Image: %v", err)
		}
		return optimized, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *ProductImageService) loadSource(ctx context.Context, product models.Product) ([]byte, error) {
	if product.DriveFileID != "" && s.drive != nil {
		data, err := s.drive.DownloadImage(ctx, product.DriveFileID)
		if err == nil {
			return data, nil
		}
		log.Printf("⚠️ ProductImageService: Drive download for %s failed, trying local file: %v", product.ID, err)
	}
	if product.ImageFile == "" {
		return nil, ErrImageNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.imageDir, filepath.Base(product.ImageFile)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product image: %w", err)
	}
	return data, nil
}

// SyncFromDrive downloads the Drive images whose names match a product's imageFile into the image directory.
// Files already on disk are skipped.
func (s *ProductImageService) SyncFromDrive(ctx context.Context, folderID string) (*ImageSyncResult, error) {
	if s.drive == nil {
		return nil, fmt.Errorf("google drive is not configured")
	}
	log.Printf("📥 SyncFromDrive: starting for folder %s", folderID)

	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	images, err := s.drive.ListImages(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images from Drive: %w", err)
	}
	if err := os.MkdirAll(s.imageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	byName := make(map[string]DriveImage, len(images))
	for _, img := range images {
		byName[baseName(img.Name)] = img
	}

	result := &ImageSyncResult{}
	for _, product := range cfg.Products {
		if product.ImageFile == "" {
			continue
		}
		img, ok := byName[baseName(product.ImageFile)]
		if !ok {
			continue
		}
		result.Total++

		target := filepath.Join(s.imageDir, filepath.Base(product.ImageFile))
		if _, err := os.Stat(target); err == nil {
			log.Printf("⏭️  Skipping %s (already exists on disk)", target)
			result.Skipped++
			continue
		}

		data, err := s.drive.DownloadImage(ctx, img.FileID)
		if err != nil {
			msg := fmt.Sprintf("failed to download %s (%s): %v", img.Name, img.FileID, err)
			log.Printf("❌ %s", msg)
			result.Errors = append(result.Errors, msg)
			continue
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			msg := fmt.Sprintf("failed to save %s: %v", target, err)
			log.Printf("❌ %s", msg)
			result.Errors = append(result.Errors, msg)
			continue
		}
		s.cache.Invalidate(product.ID)
		result.Downloaded++
	}

	log.Printf("🎉 SyncFromDrive: %d downloaded, %d skipped, %d failed out of %d matched images",
		result.Downloaded, result.Skipped, len(result.Errors), result.Total)
	return result, nil
}

func baseName(name string) string {
	name = strings.ToLower(filepath.Base(name))
	return strings.TrimSuffix(name, filepath.Ext(name))
}
