package setup

// Environment checks for the sticker pipeline. Each check is independent
// and reports pass/fail; the doctor command fails if any check does.

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"stickerforge/config"
	"stickerforge/pack"
	"stickerforge/sticker"
)

// Check is one named environment probe.
type Check struct {
	Name string
	Run  func(cfg *config.Config) error
}

// Checks returns the full probe set in execution order.
func Checks() []Check {
	return []Check{
		{Name: "source directory", Run: checkSourceDir},
		{Name: "source images", Run: checkSourceImages},
		{Name: "output directory", Run: checkOutputDir},
		{Name: "image pipeline", Run: checkPipeline},
	}
}

func checkSourceDir(cfg *config.Config) error {
	fi, err := os.Stat(cfg.SourceDir)
	if err != nil {
		return fmt.Errorf("source directory %s is not accessible: %w", cfg.SourceDir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("source path %s is not a directory", cfg.SourceDir)
	}
	return nil
}

func checkSourceImages(cfg *config.Config) error {
	images, err := pack.FindImages(cfg.SourceDir)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return pack.ErrNoImages
	}
	return nil
}

func checkOutputDir(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	probe := filepath.Join(cfg.OutputDir, ".stickerforge-probe")
	if err := os.WriteFile(probe, []byte("probe"), 0644); err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", cfg.OutputDir, err)
	}
	return os.Remove(probe)
}

// checkPipeline runs a tiny in-memory image through normalize and encode to
// prove the imaging stack works before a real run.
func checkPipeline(cfg *config.Config) error {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 10; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 25), G: uint8(y * 40), A: 255})
		}
	}

	target := cfg.SelectedSize()
	frames, err := sticker.Normalize([]sticker.Frame{{Image: src}}, target)
	if err != nil {
		return fmt.Errorf("normalize self-test failed: %w", err)
	}

	var buf bytes.Buffer
	if _, err := sticker.Encode(&buf, frames, cfg.MaxFileSize); err != nil {
		return fmt.Errorf("encode self-test failed: %w", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		return fmt.Errorf("decode self-test failed: %w", err)
	}
	if decoded.Bounds().Dx() != target.Width || decoded.Bounds().Dy() != target.Height {
		return fmt.Errorf("self-test produced %dx%d, expected %dx%d",
			decoded.Bounds().Dx(), decoded.Bounds().Dy(), target.Width, target.Height)
	}
	return nil
}
