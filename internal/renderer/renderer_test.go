package renderer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tephra-dev/tephra/internal/config"
	"github.com/tephra-dev/tephra/internal/errors"
)

// fakeExecutor records calls and copies the artifact body to the writer.
type fakeExecutor struct {
	calls    []string
	bindings []Bindings
}

func (f *fakeExecutor) Execute(_ context.Context, artifactPath string, bindings Bindings, w io.Writer) error {
	f.calls = append(f.calls, artifactPath)
	f.bindings = append(f.bindings, bindings)

	content, err := os.ReadFile(artifactPath)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

func setup(t *testing.T, templates map[string]string) (*config.Config, *fakeExecutor, *Renderer) {
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

	exec := &fakeExecutor{}
	return cfg, exec, New(cfg, WithExecutor(exec))
}

func TestRenderer_Compile(t *testing.T) {
	_, _, r := setup(t, map[string]string{"a": "plain"})

	path, err := r.Compile(context.Background(), "a")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "plain")
}

func TestRenderer_Render(t *testing.T) {
	t.Run("streams executor output", func(t *testing.T) {
		_, exec, r := setup(t, map[string]string{"a": "body"})

		var buf strings.Builder
		bindings := Bindings{"name": "ada"}
		require.NoError(t, r.Render(context.Background(), &buf, "a", bindings))

		require.Len(t, exec.calls, 1)
		assert.Contains(t, buf.String(), "body")
		assert.Equal(t, bindings, exec.bindings[0])
	})

	t.Run("compile failure surfaces before execution", func(t *testing.T) {
		_, exec, r := setup(t, nil)

		err := r.Render(context.Background(), io.Discard, "../escape", nil)
		require.Error(t, err)
		assert.True(t, errors.IsPathEscape(err))
		assert.Empty(t, exec.calls)
	})
}

func TestRenderer_RenderToString(t *testing.T) {
	_, _, r := setup(t, map[string]string{"a": "hello"})

	out, err := r.RenderToString(context.Background(), "a", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestRenderer_ClearCache(t *testing.T) {
	cfg, _, r := setup(t, map[string]string{"a": "x"})

	_, err := r.Compile(context.Background(), "a")
	require.NoError(t, err)

	require.NoError(t, r.ClearCache())

	entries, err := os.ReadDir(cfg.Cache.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
