package pack

import (
	"github.com/spf13/cobra"

	"stickerforge/config"
)

// AddCmdGenerate registers the generate subcommand on the root command.
func AddCmdGenerate(root *cobra.Command) {
	var configPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the iOS sticker pack from the source images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			gen, err := NewGenerator(cfg)
			if err != nil {
				return err
			}

			_, err = gen.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")

	root.AddCommand(cmd)
}
