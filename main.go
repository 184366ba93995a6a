package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stickerforge/pack"
	"stickerforge/setup"
	"stickerforge/watcher"
)

const (
	appName        = "stickerforge"
	appDescription = "Generates iOS sticker packs from a folder of source images."
)

func main() {
	fmt.Println("Stickerforge - iOS Sticker Pack Generator")
	fmt.Println("=========================================")

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         appDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pack.AddCmdGenerate(rootCmd)
	watcher.AddCmdWatch(rootCmd)
	setup.AddCmdDoctor(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.WithFields(
			log.Fields{
				"app.name": appName,
				"error":    err.Error(),
			},
		).Fatal("application exited with an error")
	}
}
