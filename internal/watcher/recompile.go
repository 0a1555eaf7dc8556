package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tephra-dev/tephra/internal/cache"
	"github.com/tephra-dev/tephra/internal/compiler"
	"github.com/tephra-dev/tephra/internal/config"
	"github.com/tephra-dev/tephra/internal/logging"
)

// Recompiler rebuilds templates affected by a change: the changed template
// itself and every template whose dependency set contains it.
type Recompiler struct {
	cfg      *config.Config
	pipeline *compiler.Pipeline
	manager  *cache.Manager
	logger   logging.Logger
}

// NewRecompiler creates a recompiler over the given pipeline and cache.
func NewRecompiler(cfg *config.Config, pipeline *compiler.Pipeline, manager *cache.Manager, logger logging.Logger) *Recompiler {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &Recompiler{
		cfg:      cfg,
		pipeline: pipeline,
		manager:  manager,
		logger:   logger.WithComponent("recompiler"),
	}
}

// Handler returns a ChangeHandler wired to this recompiler.
func (r *Recompiler) Handler(ctx context.Context) ChangeHandler {
	return func(events []ChangeEvent) error {
		changed := make([]string, 0, len(events))
		for _, event := range events {
			if event.Type == EventTypeDeleted {
				continue
			}
			if id, ok := r.identify(event.Path); ok {
				changed = append(changed, id)
			}
		}
		if len(changed) == 0 {
			return nil
		}

		return r.Recompile(ctx, changed)
	}
}

// Recompile rebuilds every template affected by the changed identifiers.
func (r *Recompiler) Recompile(ctx context.Context, changed []string) error {
	affected, err := r.affected(changed)
	if err != nil {
		return err
	}

	for _, id := range affected {
		if _, err := r.manager.Ensure(ctx, id); err != nil {
			// Keep going: one broken template must not stall the watch loop.
			r.logger.Error(ctx, err, "recompile failed", "template", id)
			continue
		}
		r.logger.Info(ctx, "recompiled", "template", id)
	}

	return nil
}

// affected walks the template root and keeps every template that is changed
// itself or transitively depends on a changed one.
func (r *Recompiler) affected(changed []string) ([]string, error) {
	changedSet := make(map[string]bool, len(changed))
	for _, id := range changed {
		changedSet[id] = true
	}

	all, err := r.listTemplates()
	if err != nil {
		return nil, err
	}

	var affected []string
	for _, id := range all {
		if changedSet[id] {
			affected = append(affected, id)
			continue
		}
		deps, err := r.pipeline.Dependencies(id)
		if err != nil {
			// A template that no longer resolves will fail loudly on its own
			// compile; it does not block the others here.
			continue
		}
		for _, dep := range deps {
			if changedSet[dep] {
				affected = append(affected, id)
				break
			}
		}
	}

	return affected, nil
}

// listTemplates returns the identifiers of every template under the root.
func (r *Recompiler) listTemplates() ([]string, error) {
	root, err := filepath.Abs(r.cfg.Templates.Root)
	if err != nil {
		return nil, err
	}

	var ids []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != r.cfg.Templates.Extension {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		id := strings.TrimSuffix(filepath.ToSlash(rel), r.cfg.Templates.Extension)
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// identify maps an absolute changed path back to a template identifier.
func (r *Recompiler) identify(path string) (string, bool) {
	root, err := filepath.Abs(r.cfg.Templates.Root)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	if filepath.Ext(rel) != r.cfg.Templates.Extension {
		return "", false
	}

	return strings.TrimSuffix(filepath.ToSlash(rel), r.cfg.Templates.Extension), true
}
