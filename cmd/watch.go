package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tephra-dev/tephra/internal/cache"
	"github.com/tephra-dev/tephra/internal/compiler"
	"github.com/tephra-dev/tephra/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Watch the template root and recompile on change",
	Long: `Watch the template root for changes and recompile affected templates.

When a template changes, every template that depends on it (through
extends or include) is recompiled as well, so cached artifacts never go
stale while the watcher runs. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pipeline := compiler.New(cfg, logger)
		manager := cache.NewManager(cfg, pipeline, logger, nil)
		recompiler := watcher.NewRecompiler(cfg, pipeline, manager, logger)

		tw, err := watcher.New(watchDebounce, logger)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer func() {
			if err := tw.Stop(); err != nil {
				logger.Warn(ctx, err, "failed to stop watcher")
			}
		}()

		tw.AddFilter(watcher.ExtensionFilter(cfg.Templates.Extension))
		tw.AddHandler(recompiler.Handler(ctx))

		if err := tw.AddRecursive(cfg.Templates.Root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", cfg.Templates.Root, err)
		}

		tw.Start(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes (Ctrl+C to stop)\n", cfg.Templates.Root)

		<-ctx.Done()
		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down")
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "delay before a burst of changes triggers a rebuild")
	rootCmd.AddCommand(watchCmd)
}
