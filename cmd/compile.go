package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tephra-dev/tephra/internal/renderer"
)

var compileCmd = &cobra.Command{
	Use:     "compile <template>...",
	Aliases: []string{"c"},
	Short:   "Compile templates to cached PHP artifacts",
	Long: `Compile resolves each template identifier against the template root, runs
the full pipeline (comments, inheritance, includes, transpilation, optional
post-filter) and prints the location of the cached artifact. Fresh artifacts
are reused without recompiling.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().Bool("no-cache", false, "ignore and overwrite any cached artifact")
	compileCmd.Flags().Bool("allow-raw-code", false, "permit {? ... ?} raw code blocks")
	compileCmd.Flags().Bool("trim-whitespace", false, "collapse whitespace outside sensitive regions")
	compileCmd.Flags().Bool("remove-html-comments", false, "strip non-conditional HTML comments")

	viper.BindPFlag("templates.allow_raw_code", compileCmd.Flags().Lookup("allow-raw-code"))
	viper.BindPFlag("output.trim_whitespace", compileCmd.Flags().Lookup("trim-whitespace"))
	viper.BindPFlag("output.remove_html_comments", compileCmd.Flags().Lookup("remove-html-comments"))
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	r := renderer.New(cfg, renderer.WithLogger(logger))

	for _, id := range args {
		artifact, err := r.Compile(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("compiling %s: %w", id, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), artifact)
	}

	return nil
}
