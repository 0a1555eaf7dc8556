package compiler

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tephra-dev/tephra/internal/errors"
)

func TestLoader_Resolve(t *testing.T) {
	cfg := writeTemplates(t, map[string]string{"pages/home": "hi"})
	loader := NewLoader(cfg)

	t.Run("resolves inside root with extension appended", func(t *testing.T) {
		path, err := loader.Resolve("pages/home")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, filepath.Join("pages", "home.tpl")))
		assert.True(t, filepath.IsAbs(path))
	})

	t.Run("explicit extension kept", func(t *testing.T) {
		path, err := loader.Resolve("pages/home.tpl")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, "home.tpl"))
	})

	t.Run("escape via dotdot rejected", func(t *testing.T) {
		_, err := loader.Resolve("../outside")
		require.Error(t, err)
		assert.True(t, errors.IsPathEscape(err))
	})

	t.Run("deep escape rejected", func(t *testing.T) {
		_, err := loader.Resolve("pages/../../../etc/passwd")
		require.Error(t, err)
		assert.True(t, errors.IsPathEscape(err))
	})

	t.Run("empty identifier rejected", func(t *testing.T) {
		_, err := loader.Resolve("")
		assert.True(t, errors.IsPathEscape(err))
	})

	t.Run("dotdot segments that stay inside root are allowed", func(t *testing.T) {
		path, err := loader.Resolve("pages/../pages/home")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, filepath.Join("pages", "home.tpl")))
	})
}

func TestLoader_Load(t *testing.T) {
	cfg := writeTemplates(t, map[string]string{"a": "content {# c #}"})
	loader := NewLoader(cfg)

	t.Run("reads content and mtime", func(t *testing.T) {
		src, err := loader.Load("a")
		require.NoError(t, err)
		assert.Equal(t, "a", src.ID)
		assert.Equal(t, "content {# c #}", string(src.Content))
		assert.False(t, src.ModTime.IsZero())
	})

	t.Run("missing template is an io error", func(t *testing.T) {
		_, err := loader.Load("nope")
		require.Error(t, err)
		assert.True(t, errors.IsIO(err))
	})

	t.Run("LoadStripped strips comments", func(t *testing.T) {
		text, err := loader.LoadStripped("a")
		require.NoError(t, err)
		assert.Equal(t, "content ", text)
	})
}
