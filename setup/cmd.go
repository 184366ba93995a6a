package setup

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stickerforge/config"
)

// AddCmdDoctor registers the doctor subcommand on the root command.
func AddCmdDoctor(root *cobra.Command) {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the environment is ready for sticker generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("configuration check failed: %w", err)
			}
			log.WithField("config", configPath).Info("configuration OK")

			failed := 0
			for _, check := range Checks() {
				if err := check.Run(cfg); err != nil {
					log.WithError(err).Errorf("%s: FAIL", check.Name)
					failed++
					continue
				}
				log.Infof("%s: OK", check.Name)
			}

			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			log.Info("environment is ready")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")

	root.AddCommand(cmd)
}
