package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tephra-dev/tephra/internal/renderer"
)

var renderCmd = &cobra.Command{
	Use:     "render <template>",
	Aliases: []string{"r"},
	Short:   "Compile a template and execute it with bindings",
	Long: `Render compiles the template (or reuses a fresh artifact) and executes the
compiled PHP with the system php binary, streaming the output to stdout.
Bindings are read as a JSON object from --data.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("data", "", "path to a JSON file with variable bindings")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	bindings := renderer.Bindings{}
	if dataPath, _ := cmd.Flags().GetString("data"); dataPath != "" {
		raw, err := os.ReadFile(dataPath)
		if err != nil {
			return fmt.Errorf("reading bindings: %w", err)
		}
		if err := json.Unmarshal(raw, &bindings); err != nil {
			return fmt.Errorf("parsing bindings: %w", err)
		}
	}

	r := renderer.New(cfg,
		renderer.WithLogger(logger),
		renderer.WithExecutor(renderer.NewPHPExecutor()),
	)

	return r.Render(cmd.Context(), cmd.OutOrStdout(), args[0], bindings)
}
