package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tephra-dev/tephra/internal/config"
)

var initForce bool

const sampleLayout = `{# Base layout: pages extend this and fill the yields. #}
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>{% yield title %}</title>
</head>
<body>
    <main>
        {% yield content %}
    </main>
</body>
</html>
`

const sampleIndex = `{% extends "layout" %}

{% block title %}Welcome{% endblock %}

{% block content %}
<h1>Hello, {{ $name }}!</h1>
{% if (isset($items)) %}
<ul>
    {% foreach ($items as $item) %}
    <li>{{ $item }}</li>
    {% endforeach %}
</ul>
{% endif %}
{% endblock %}
`

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new tephra project",
	Long: `Initialize a new tephra project in the given directory (default ".").

Creates a .tephra.yml with the default configuration and a templates
directory holding a starter layout and page.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	cfg := config.Default()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default configuration: %w", err)
	}

	files := []struct {
		path    string
		content []byte
	}{
		{filepath.Join(dir, ".tephra.yml"), data},
		{filepath.Join(dir, "templates", "layout"+cfg.Templates.Extension), []byte(sampleLayout)},
		{filepath.Join(dir, "templates", "index"+cfg.Templates.Extension), []byte(sampleIndex)},
	}

	for _, f := range files {
		path, content := f.path, f.content
		if !initForce {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "created", path)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Project initialized. Try: tephra render index --data bindings.json")
	return nil
}
