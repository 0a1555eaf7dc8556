package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tephra-dev/tephra/internal/errors"
)

func TestPipeline_Compile(t *testing.T) {
	ctx := context.Background()

	t.Run("full pipeline on inheriting template with include", func(t *testing.T) {
		cfg := writeTemplates(t, map[string]string{
			"layout": "<html>{% yield body %}</html>",
			"pages/home": `{% extends "layout" %}{% block body %}` +
				`{% include "partials/greet" %}{% endblock %}`,
			"partials/greet": "{# partial #}Hello {{ $name }}",
		})

		out, err := New(cfg, nil).Compile(ctx, "pages/home")
		require.NoError(t, err)
		assert.Equal(t,
			`<html>Hello <?= htmlspecialchars($name ?? '', ENT_QUOTES | ENT_SUBSTITUTE, 'UTF-8') ?></html>`,
			out)
	})

	t.Run("raw code gated by config", func(t *testing.T) {
		cfg := writeTemplates(t, map[string]string{
			"a": "x{? run(); ?}y",
		})

		out, err := New(cfg, nil).Compile(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "xy", out)

		cfg.Templates.AllowRawCode = true
		out, err = New(cfg, nil).Compile(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "x<?php run(); ?>y", out)
	})

	t.Run("post filter applied when enabled", func(t *testing.T) {
		cfg := writeTemplates(t, map[string]string{
			"a": "a   b<!-- note -->c",
		})
		cfg.Output.TrimWhitespace = true
		cfg.Output.RemoveHTMLComments = true

		out, err := New(cfg, nil).Compile(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "a bc", out)
	})

	t.Run("comment removal leaves emitted code intact", func(t *testing.T) {
		cfg := writeTemplates(t, map[string]string{
			"a": "<!-- gone -->{? echo '<!-- kept -->'; ?}",
		})
		cfg.Templates.AllowRawCode = true
		cfg.Output.RemoveHTMLComments = true

		out, err := New(cfg, nil).Compile(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "<?php echo '<!-- kept -->'; ?>", out)
	})

	t.Run("top level escape fails", func(t *testing.T) {
		cfg := writeTemplates(t, nil)

		_, err := New(cfg, nil).Compile(ctx, "../outside")
		require.Error(t, err)
		assert.True(t, errors.IsPathEscape(err))
	})

	t.Run("inheritance violation aborts compile", func(t *testing.T) {
		cfg := writeTemplates(t, map[string]string{
			"layout": "{% yield a %}{% yield b %}",
			"child":  `{% extends "layout" %}{% block a %}x{% endblock %}`,
		})

		_, err := New(cfg, nil).Compile(ctx, "child")
		require.Error(t, err)
		assert.True(t, errors.IsInheritance(err))
	})
}

func TestPipeline_Dependencies(t *testing.T) {
	t.Run("transitive set, each once", func(t *testing.T) {
		cfg := writeTemplates(t, map[string]string{
			"child":  `{% extends "layout" %}{% include "nav" %}`,
			"layout": `{% include "nav" %}{% yield body %}`,
			"nav":    "nav",
		})

		deps, err := New(cfg, nil).Dependencies("child")
		require.NoError(t, err)
		assert.Equal(t, []string{"layout", "nav"}, deps)
	})

	t.Run("cycle terminates", func(t *testing.T) {
		cfg := writeTemplates(t, map[string]string{
			"a": `{% include "b" %}`,
			"b": `{% include "a" %}`,
		})

		deps, err := New(cfg, nil).Dependencies("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, deps)
	})
}
