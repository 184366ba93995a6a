package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the path fields from the YAML file.
// Only filesystem paths are configurable through the environment.
const (
	EnvSourceDir = "STICKERFORGE_SOURCE_DIR"
	EnvOutputDir = "STICKERFORGE_OUTPUT_DIR"
)

// Size is a named target profile in pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Config represents the application configuration
type Config struct {
	SourceDir   string          `yaml:"source_dir"`
	OutputDir   string          `yaml:"output_dir"`
	Pack        PackConfig      `yaml:"pack"`
	Sizes       map[string]Size `yaml:"sizes"`
	MaxFileSize int64           `yaml:"max_file_size"`
	Watch       WatchConfig     `yaml:"watch"`
}

type PackConfig struct {
	Name   string `yaml:"name"`
	Author string `yaml:"author"`
	Size   string `yaml:"size"`
}

type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// defaults carries the iOS sticker size table and the per-sticker byte cap.
func defaults() *Config {
	return &Config{
		Sizes: map[string]Size{
			"small":  {Width: 300, Height: 300},
			"medium": {Width: 408, Height: 408},
			"large":  {Width: 618, Height: 618},
		},
		MaxFileSize: 500 * 1024,
		Pack: PackConfig{
			Name:   "Stickers",
			Author: "stickerforge",
			Size:   "medium",
		},
		Watch: WatchConfig{DebounceMs: 500},
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// A .env next to the working directory may carry path overrides; missing is fine
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if v := os.Getenv(EnvSourceDir); v != "" {
		cfg.SourceDir = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.Pack.Name == "" {
		return fmt.Errorf("pack.name is required")
	}
	if len(c.Sizes) == 0 {
		return fmt.Errorf("at least one size profile is required")
	}
	for name, s := range c.Sizes {
		if s.Width < 1 || s.Height < 1 {
			return fmt.Errorf("size profile %q has non-positive dimensions", name)
		}
	}
	if _, ok := c.Sizes[c.Pack.Size]; !ok {
		return fmt.Errorf("pack.size %q is not a configured size profile", c.Pack.Size)
	}
	if c.MaxFileSize < 1 {
		return fmt.Errorf("max_file_size must be positive")
	}
	return nil
}

// SelectedSize returns the target profile chosen for the run.
func (c *Config) SelectedSize() Size {
	return c.Sizes[c.Pack.Size]
}

// PackDir returns the full path of the .stickerpack bundle directory.
func (c *Config) PackDir() string {
	return filepath.Join(c.OutputDir, c.Pack.Name+".stickerpack")
}
