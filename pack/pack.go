package pack

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"stickerforge/config"
	"stickerforge/sticker"
)

// Run-fatal conditions: without a source tree or at least one candidate
// image there is nothing to build a pack from.
var (
	ErrSourceMissing = errors.New("source directory does not exist")
	ErrNoImages      = errors.New("no images found in source directory")
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Result records the outcome for one source image.
type Result struct {
	SourcePath string
	OutputName string
	Bytes      int
	Frames     int
	Fallback   bool
	Err        error
}

// Summary describes a completed generation run.
type Summary struct {
	Total     int
	Processed int
	Results   []Result
	PackDir   string
}

// FindImages walks root recursively and returns every file with a known
// image extension, in walk order.
func FindImages(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSourceMissing
		}
		return nil, fmt.Errorf("failed to stat source directory: %w", err)
	}

	var images []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source directory: %w", err)
	}

	return images, nil
}

// Generator produces one sticker pack from a source tree.
type Generator struct {
	cfg *config.Config
}

// NewGenerator creates a generator for the given configuration.
func NewGenerator(cfg *config.Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Generator{cfg: cfg}, nil
}

// Run regenerates the whole pack: every image is decoded, normalized to the
// selected profile, encoded under the byte budget and written into the
// .stickerpack bundle, followed by the Contents.json manifest and the
// top-level README. Images are processed one at a time; a failed image is
// logged and skipped, never aborting the run.
func (g *Generator) Run() (*Summary, error) {
	images, err := FindImages(g.cfg.SourceDir)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	log.WithFields(log.Fields{
		"images": len(images),
		"pack":   g.cfg.Pack.Name,
		"size":   g.cfg.Pack.Size,
	}).Info("starting sticker pack generation")

	packDir := g.cfg.PackDir()
	if err := os.MkdirAll(packDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create pack directory: %w", err)
	}

	target := g.cfg.SelectedSize()
	summary := &Summary{Total: len(images), PackDir: packDir}

	for idx, imagePath := range images {
		res := g.processImage(imagePath, packDir, target)
		summary.Results = append(summary.Results, res)

		entry := log.WithFields(log.Fields{
			"image":    filepath.Base(imagePath),
			"progress": fmt.Sprintf("%d/%d", idx+1, len(images)),
		})
		if res.Err != nil {
			entry.WithError(res.Err).Warn("skipping image")
			continue
		}

		summary.Processed++
		if res.Fallback {
			entry = entry.WithField("fallback", true)
		}
		entry.WithFields(log.Fields{
			"frames": res.Frames,
			"bytes":  res.Bytes,
		}).Info("sticker written")
	}

	if err := writeManifest(packDir, g.cfg.Pack.Author, summary); err != nil {
		return summary, err
	}
	if err := writeReadme(g.cfg.OutputDir, g.cfg.Pack.Name, summary); err != nil {
		return summary, err
	}

	log.WithFields(log.Fields{
		"processed": summary.Processed,
		"total":     summary.Total,
		"pack_dir":  packDir,
	}).Info("sticker pack complete")

	return summary, nil
}

// processImage runs the decode, normalize, encode, write sequence for one
// source image. All resources are scoped to this call.
func (g *Generator) processImage(imagePath, packDir string, target config.Size) Result {
	res := Result{
		SourcePath: imagePath,
		OutputName: outputName(imagePath),
	}

	if animated, err := sticker.IsAnimated(imagePath); err == nil && animated {
		log.WithField("image", filepath.Base(imagePath)).Info("animated gif detected, converting to apng")
	}

	frames, err := sticker.Decode(imagePath)
	if err != nil {
		res.Err = fmt.Errorf("failed to decode: %w", err)
		return res
	}

	normalized, err := sticker.Normalize(frames, target)
	if err != nil {
		res.Err = fmt.Errorf("failed to normalize: %w", err)
		return res
	}

	enc, err := sticker.WriteFile(filepath.Join(packDir, res.OutputName), normalized, g.cfg.MaxFileSize)
	if err != nil {
		res.Err = fmt.Errorf("failed to encode: %w", err)
		return res
	}

	res.Bytes = enc.Bytes
	res.Frames = enc.Frames
	res.Fallback = enc.Fallback
	return res
}

// outputName keeps the source stem but always uses the .png extension,
// whether the content ends up static or animated.
func outputName(imagePath string) string {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + ".png"
}
