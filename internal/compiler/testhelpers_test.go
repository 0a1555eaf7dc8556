package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tephra-dev/tephra/internal/config"
)

// writeTemplates lays out a template root in a temp dir and returns a config
// pointing at it. Keys are identifiers without extension.
func writeTemplates(t *testing.T, templates map[string]string) *config.Config {
	t.Helper()

	root := t.TempDir()
	for id, content := range templates {
		path := filepath.Join(root, filepath.FromSlash(id)+".tpl")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	cfg := config.Default()
	cfg.Templates.Root = root
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")

	return cfg
}
