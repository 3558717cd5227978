// Package imaging loads screenshots and crops per-field regions for
// recognition.
package imaging

import (
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/fairwaylabs/shotlens/internal/model"
)

// Load decodes a PNG or JPEG image from disk.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "imaging: open image")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "imaging: decode %s", filepath.Base(path))
	}
	return img, nil
}

// Crop extracts the region described by box, clamped to the image
// bounds. Returns an error when the box lies entirely outside the
// image.
func Crop(img image.Image, box model.Box) (image.Image, error) {
	bounds := img.Bounds()
	r := image.Rect(
		int(box.X), int(box.Y),
		int(box.X+box.W), int(box.Y+box.H),
	).Intersect(bounds)
	if r.Empty() {
		return nil, eris.Errorf("imaging: crop box %v outside image bounds %v", box, bounds)
	}

	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(r), nil
	}

	// Fallback for decoders without SubImage support.
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			dst.Set(x, y, img.At(r.Min.X+x, r.Min.Y+y))
		}
	}
	return dst, nil
}

// WriteTempPNG writes img to a temporary PNG file and returns its
// path. The caller removes the file when done.
func WriteTempPNG(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "shotlens-crop-*.png")
	if err != nil {
		return "", eris.Wrap(err, "imaging: create temp file")
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		os.Remove(f.Name())
		return "", eris.Wrap(err, "imaging: encode png")
	}
	return f.Name(), nil
}
