package setup

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"stickerforge/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmp := t.TempDir()

	cfg := &config.Config{
		SourceDir: filepath.Join(tmp, "source"),
		OutputDir: filepath.Join(tmp, "output"),
		Pack: config.PackConfig{
			Name:   "DoctorPack",
			Author: "doctor_test",
			Size:   "small",
		},
		Sizes:       map[string]config.Size{"small": {Width: 300, Height: 300}},
		MaxFileSize: 500 * 1024,
	}
	if err := os.MkdirAll(cfg.SourceDir, 0755); err != nil {
		t.Fatalf("Failed to create source dir: %v", err)
	}
	return cfg
}

func addSourceImage(t *testing.T, cfg *config.Config) {
	t.Helper()
	f, err := os.Create(filepath.Join(cfg.SourceDir, "probe.png"))
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func TestChecksAllPass(t *testing.T) {
	cfg := testConfig(t)
	addSourceImage(t, cfg)

	for _, check := range Checks() {
		if err := check.Run(cfg); err != nil {
			t.Errorf("Check %q failed: %v", check.Name, err)
		}
	}
}

func TestCheckSourceDirMissing(t *testing.T) {
	cfg := testConfig(t)
	cfg.SourceDir = filepath.Join(cfg.SourceDir, "missing")

	if err := checkSourceDir(cfg); err == nil {
		t.Error("Expected failure for missing source directory")
	}
}

func TestCheckSourceImagesEmpty(t *testing.T) {
	cfg := testConfig(t)

	if err := checkSourceImages(cfg); err == nil {
		t.Error("Expected failure for empty source directory")
	}
}

func TestCheckOutputDirCleansProbe(t *testing.T) {
	cfg := testConfig(t)

	if err := checkOutputDir(cfg); err != nil {
		t.Fatalf("checkOutputDir failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.OutputDir, ".stickerforge-probe")); !os.IsNotExist(err) {
		t.Error("Probe file was left behind")
	}
}

func TestCheckPipeline(t *testing.T) {
	cfg := testConfig(t)

	if err := checkPipeline(cfg); err != nil {
		t.Errorf("Pipeline self-test failed: %v", err)
	}
}
