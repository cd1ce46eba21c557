package service

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Image sizes served to the storefront
const (
	SizeThumb  = "thumb"
	SizeMedium = "medium"

	qualityThumb  = 60
	qualityMedium = 75
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// ImageCache stores optimized product images on disk
type ImageCache struct {
	dir string
}

// NewImageCache creates the cache directory if it doesn't exist
func NewImageCache(dir string) (*ImageCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &ImageCache{dir: dir}, nil
}

// Path returns the cache file path for a product and size
func (c *ImageCache) Path(productID, size string) string {
	return filepath.Join(c.dir, fmt.Sprintf("product_%s_%s.jpg", sanitizeFileName(productID), size))
}

// Read returns the cached image, or ok=false on a miss
func (c *ImageCache) Read(productID, size string) ([]byte, bool) {
	data, err := os.ReadFile(c.Path(productID, size))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Write stores an optimized image
func (c *ImageCache) Write(productID, size string, data []byte) error {
	path := c.Path(productID, size)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Printf("✓ Image cached: %s", path)
	return nil
}

// Invalidate drops every cached size of a product
func (c *ImageCache) Invalidate(productID string) {
	for _, size := range []string{SizeThumb, SizeMedium} {
		if err := os.Remove(c.Path(productID, size)); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️ ImageCache.Invalidate: %v", err)
		}
	}
}

// OptimizeImage re-encodes an image as JPEG, fitting it inside the size's bounding box.
// Unknown sizes are treated as medium.
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	maxDim, quality := maxSizeMedium, qualityMedium
	if size == SizeThumb {
		maxDim, quality = maxSizeThumb, qualityThumb
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		log.Printf("🔄 Resized image: %dx%d -> %dx%d", bounds.Dx(), bounds.Dy(), img.Bounds().Dx(), img.Bounds().Dy())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
