package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tephra-dev/tephra/internal/renderer"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached artifact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		r := renderer.New(cfg, renderer.WithLogger(logger))
		if err := r.ClearCache(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared:", cfg.Cache.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
