package compiler

import (
	"context"

	"github.com/tephra-dev/tephra/internal/config"
	"github.com/tephra-dev/tephra/internal/logging"
)

// Pipeline runs the full compile sequence for one template: strip, resolve
// inheritance, expand includes, transpile, post-filter. It is synchronous and
// stateless between calls; concurrent use is safe.
type Pipeline struct {
	cfg    *config.Config
	loader *Loader
	logger logging.Logger
}

// New creates a compile pipeline for the given configuration.
func New(cfg *config.Config, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &Pipeline{
		cfg:    cfg,
		loader: NewLoader(cfg),
		logger: logger.WithComponent("compiler"),
	}
}

// Loader exposes the pipeline's template loader.
func (p *Pipeline) Loader() *Loader {
	return p.loader
}

// Compile runs the whole pipeline for the identified template and returns the
// PHP source text. Any failure aborts the compile; nothing is downgraded to a
// warning.
func (p *Pipeline) Compile(ctx context.Context, id string) (string, error) {
	src, err := p.loader.Load(id)
	if err != nil {
		return "", err
	}

	text, unterminated := stripComments(string(src.Content))
	if unterminated {
		// Preserved fail-safe: the unterminated region is discarded rather
		// than rejected, but it usually signals an authoring mistake.
		p.logger.Warn(ctx, nil, "unterminated comment discarded to end of input", "template", id)
	}

	text, err = NewResolver(p.loader, p.cfg.Templates.MaxIncludeDepth).Resolve(text)
	if err != nil {
		return "", err
	}

	text, err = NewExpander(p.loader, p.cfg.Templates.MaxIncludeDepth).Expand(text, 0)
	if err != nil {
		return "", err
	}

	text = Transpile(text, p.cfg.Templates.AllowRawCode)

	text = PostFilter(text, p.cfg.Output.TrimWhitespace, p.cfg.Output.RemoveHTMLComments)

	p.logger.Debug(ctx, "compiled template", "template", id, "bytes", len(text))

	return text, nil
}

// Dependencies returns the ordered, de-duplicated transitive dependency set
// of the identified template, built fresh from disk.
func (p *Pipeline) Dependencies(id string) ([]string, error) {
	text, err := p.loader.LoadStripped(id)
	if err != nil {
		return nil, err
	}

	return NewCollector(p.loader).Collect(text, make(map[string]bool))
}
