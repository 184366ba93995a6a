package sticker

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/oliamb/cutter"

	"stickerforge/config"
)

// scaleToFill computes the dimensions that scale (w, h) so the result fully
// covers the target rectangle while preserving aspect ratio. A source wider
// than the target scales by height, otherwise by width. Truncation can land
// the free dimension one pixel short of the target on near-equal aspect
// ratios, so both are clamped up to the target.
func scaleToFill(w, h int, target config.Size) (int, int) {
	srcAspect := float64(w) / float64(h)
	targetAspect := float64(target.Width) / float64(target.Height)

	var newW, newH int
	if srcAspect > targetAspect {
		newH = target.Height
		newW = int(float64(newH) * srcAspect)
	} else {
		newW = target.Width
		newH = int(float64(newW) / srcAspect)
	}

	if newW < target.Width {
		newW = target.Width
	}
	if newH < target.Height {
		newH = target.Height
	}
	return newW, newH
}

// normalizeImage produces an NRGBA surface of exactly target dimensions:
// convert to NRGBA, Lanczos-resize to fill, then center-crop. Odd crop
// margins keep the extra pixel on the right/bottom (floor bias).
func normalizeImage(img image.Image, target config.Size) (image.Image, error) {
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("image has empty bounds %v", b)
	}

	newW, newH := scaleToFill(b.Dx(), b.Dy(), target)
	scaled := imaging.Resize(imaging.Clone(img), newW, newH, imaging.Lanczos)

	left := (newW - target.Width) / 2
	top := (newH - target.Height) / 2

	cropped, err := cutter.Crop(scaled, cutter.Config{
		Width:  target.Width,
		Height: target.Height,
		Anchor: image.Point{X: left, Y: top},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to crop to %dx%d: %w", target.Width, target.Height, err)
	}

	return imaging.Clone(cropped), nil
}

// Normalize fits every frame to the target profile. Frame delays pass
// through untouched.
func Normalize(frames []Frame, target config.Size) ([]Frame, error) {
	out := make([]Frame, 0, len(frames))
	for i, f := range frames {
		img, err := normalizeImage(f.Image, target)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize frame %d: %w", i, err)
		}
		out = append(out, Frame{Image: img, Delay: f.Delay})
	}
	return out, nil
}
