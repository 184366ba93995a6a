package watcher

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stickerforge/config"
	"stickerforge/pack"
)

// AddCmdWatch registers the watch subcommand on the root command.
func AddCmdWatch(root *cobra.Command) {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the sticker pack whenever the source images change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			gen, err := pack.NewGenerator(cfg)
			if err != nil {
				return err
			}

			// Full run up front, then again after every change burst
			if _, err := gen.Run(); err != nil {
				return err
			}

			w, err := NewWatcher(cfg, func() {
				if _, err := gen.Run(); err != nil {
					log.WithError(err).Error("regeneration failed")
				}
			})
			if err != nil {
				return err
			}

			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			log.WithField("source", cfg.SourceDir).Info("watching for changes, press Ctrl+C to stop")

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			log.Info("shutting down")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")

	root.AddCommand(cmd)
}
