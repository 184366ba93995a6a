package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Contents.json layout required by iOS sticker packs.
type manifest struct {
	Info     manifestInfo      `json:"info"`
	Stickers []manifestSticker `json:"stickers"`
}

type manifestInfo struct {
	Version int    `json:"version"`
	Author  string `json:"author"`
}

type manifestSticker struct {
	Filename string `json:"filename"`
}

// writeManifest emits Contents.json listing the successful stickers in
// processing order.
func writeManifest(packDir, author string, summary *Summary) error {
	m := manifest{
		Info:     manifestInfo{Version: 1, Author: author},
		Stickers: []manifestSticker{},
	}
	for _, res := range summary.Results {
		if res.Err != nil {
			continue
		}
		m.Stickers = append(m.Stickers, manifestSticker{Filename: res.OutputName})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(packDir, "Contents.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// writeReadme drops a human-facing summary next to the pack bundle.
func writeReadme(outputDir, packName string, summary *Summary) error {
	text := fmt.Sprintf(`%s iOS Stickers
====================

Total stickers: %d (from %d source images)

Installation Instructions:
1. Transfer the %s.stickerpack folder to your iOS device
2. Use a compatible app to import the stickers
3. Enjoy your stickers!
`, packName, summary.Processed, summary.Total, packName)

	path := filepath.Join(outputDir, "README.txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write README: %w", err)
	}
	return nil
}
