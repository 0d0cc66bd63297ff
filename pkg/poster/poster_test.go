package poster

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "poster.png")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestThumbnailDownscalesPreservingAspect(t *testing.T) {
	path := writePNG(t, 200, 100)
	c := NewCache()

	img, err := c.Thumbnail(path, 50, 50)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("bounds: got %dx%d, want 50x25", b.Dx(), b.Dy())
	}
}

func TestThumbnailNeverUpscales(t *testing.T) {
	path := writePNG(t, 40, 30)
	c := NewCache()

	img, err := c.Thumbnail(path, 200, 200)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("bounds: got %dx%d, want original 40x30", b.Dx(), b.Dy())
	}
}

func TestThumbnailMemoizes(t *testing.T) {
	path := writePNG(t, 200, 100)
	c := NewCache()

	first, err := c.Thumbnail(path, 50, 50)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	// Remove the file: a second request must come from the cache.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	second, err := c.Thumbnail(path, 50, 50)
	if err != nil {
		t.Fatalf("Thumbnail (cached): %v", err)
	}
	if first != second {
		t.Error("expected the memoized image")
	}

	// A different size is a different cache entry and needs the file.
	if _, err := c.Thumbnail(path, 30, 30); err == nil {
		t.Error("expected error for uncached size with the file gone")
	}
}

func TestThumbnailRejectsBadInput(t *testing.T) {
	c := NewCache()

	if _, err := c.Thumbnail("nonexistent.png", 50, 50); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := c.Thumbnail("poster.png", 0, 50); err == nil {
		t.Error("expected error for zero bounds")
	}

	garbage := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := c.Thumbnail(garbage, 50, 50); err == nil {
		t.Error("expected decode error")
	}
}
