// Package poster decodes and downscales playlist poster images for the
// per-item placeholders shown before playback starts.
package poster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"golang.org/x/image/draw"
)

// Cache decodes posters on first use and memoizes the scaled result per
// source path and target size. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]image.Image
}

type cacheKey struct {
	source     string
	maxW, maxH int
}

// NewCache creates an empty poster cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]image.Image)}
}

// Thumbnail returns the poster at path scaled to fit within maxW x maxH,
// preserving aspect ratio. Results are memoized; repeated calls for the
// same path and size return the cached image.
func (c *Cache) Thumbnail(path string, maxW, maxH int) (image.Image, error) {
	if maxW <= 0 || maxH <= 0 {
		return nil, fmt.Errorf("poster: invalid bounds %dx%d", maxW, maxH)
	}

	key := cacheKey{source: path, maxW: maxW, maxH: maxH}
	c.mu.Lock()
	if img, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	img, err := decode(path)
	if err != nil {
		return nil, err
	}
	scaled := scaleToFit(img, maxW, maxH)

	c.mu.Lock()
	c.entries[key] = scaled
	c.mu.Unlock()
	return scaled, nil
}

func decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("poster: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("poster: failed to decode %s: %w", path, err)
	}
	return img, nil
}

// scaleToFit downscales src to fit within maxW x maxH, preserving aspect
// ratio. Images already within bounds are returned as-is; posters are never
// upscaled.
func scaleToFit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	dw, dh := int(float64(w)*scale), int(float64(h)*scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
