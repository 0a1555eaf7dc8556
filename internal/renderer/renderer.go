// Package renderer provides the public entry points over the compile
// pipeline: compile a template to its cached artifact, or render it through
// an Executor that runs the compiled PHP with variable bindings. Executing
// host code is a collaborator concern; the renderer only hands over the
// artifact location.
package renderer

import (
	"bytes"
	"context"
	"io"

	"github.com/tephra-dev/tephra/internal/cache"
	"github.com/tephra-dev/tephra/internal/compiler"
	"github.com/tephra-dev/tephra/internal/config"
	"github.com/tephra-dev/tephra/internal/logging"
)

// Bindings are the variables made visible to an executing artifact.
type Bindings map[string]interface{}

// Executor runs a compiled artifact with bindings, streaming its output to w.
type Executor interface {
	Execute(ctx context.Context, artifactPath string, bindings Bindings, w io.Writer) error
}

// Renderer ties the cache manager and an executor together. Construct one per
// configuration; it holds no mutable state and is safe for concurrent use.
type Renderer struct {
	cfg      *config.Config
	manager  *cache.Manager
	executor Executor
	logger   logging.Logger
}

// Option configures a Renderer.
type Option func(*options)

type options struct {
	logger      logging.Logger
	executor    Executor
	invalidator cache.Invalidator
}

// WithLogger sets the logger used by the renderer and the pipeline.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithExecutor sets the executor used by Render and RenderToString.
func WithExecutor(executor Executor) Option {
	return func(o *options) { o.executor = executor }
}

// WithInvalidator sets the post-write artifact invalidation hook.
func WithInvalidator(inv cache.Invalidator) Option {
	return func(o *options) { o.invalidator = inv }
}

// New creates a renderer for the given configuration.
func New(cfg *config.Config, opts ...Option) *Renderer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NopLogger{}
	}
	if o.executor == nil {
		o.executor = NewPHPExecutor()
	}

	pipeline := compiler.New(cfg, o.logger)

	return &Renderer{
		cfg:      cfg,
		manager:  cache.NewManager(cfg, pipeline, o.logger, o.invalidator),
		executor: o.executor,
		logger:   o.logger.WithComponent("renderer"),
	}
}

// Compile ensures a valid artifact exists for the template and returns its
// location.
func (r *Renderer) Compile(ctx context.Context, id string) (string, error) {
	return r.manager.Ensure(ctx, id)
}

// Render compiles the template if needed and streams the executed output to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, id string, bindings Bindings) error {
	artifact, err := r.manager.Ensure(ctx, id)
	if err != nil {
		return err
	}

	return r.executor.Execute(ctx, artifact, bindings, w)
}

// RenderToString renders the template and returns the output as a string.
func (r *Renderer) RenderToString(ctx context.Context, id string, bindings Bindings) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(ctx, &buf, id, bindings); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ClearCache deletes every compiled artifact.
func (r *Renderer) ClearCache() error {
	return r.manager.Clear()
}
