// Package image is the codec and resampling boundary of the converter.
package image

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// Load decodes a png, jpeg or webp image from path.
func Load(path string) (image.Image, error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()

	i, _, e := image.Decode(f)
	if e != nil {
		return nil, fmt.Errorf("decode %s: %w", path, e)
	}

	return i, nil
}

// Save encodes img to path, as jpeg when the extension says so and png
// otherwise.
func Save(path string, img image.Image) error {
	f, e := os.Create(path)
	if e != nil {
		return e
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		e = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	default:
		e = png.Encode(f, img)
	}
	if e != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, e)
	}

	return f.Close()
}
