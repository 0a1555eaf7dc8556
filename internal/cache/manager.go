// Package cache owns the compiled-artifact cache: deterministic artifact
// naming, dependency-aware freshness checks, and atomic, crash-safe writes.
//
// No other component writes to the cache directory. Concurrent compiles need
// no global lock: the atomic-rename discipline guarantees a reader sees
// either the previous artifact or the fully written new one, never a partial
// file, and two processes racing to write the same artifact produce
// byte-identical output, so the loser's write is benign.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/tephra-dev/tephra/internal/compiler"
	"github.com/tephra-dev/tephra/internal/config"
	"github.com/tephra-dev/tephra/internal/errors"
	"github.com/tephra-dev/tephra/internal/logging"
)

// GuardHeader prefixes every artifact so it produces no output if accessed
// directly outside the intended execution path.
const GuardHeader = "<?php /* Generated by tephra. Do not edit. */ if (!defined('TEPHRA_ROOT')) { exit; } ?>\n"

const artifactExt = ".php"

// Invalidator is notified after an artifact is (re)written, so an external
// opcode cache keyed by the artifact path can drop its stale entry.
type Invalidator interface {
	Invalidate(path string) error
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(string) error { return nil }

// Manager orchestrates the compile pipeline and decides when an artifact is
// (re)written. It holds no mutable state between calls.
type Manager struct {
	cfg         *config.Config
	pipeline    *compiler.Pipeline
	logger      logging.Logger
	invalidator Invalidator
}

// NewManager creates a cache manager. A nil invalidator defaults to a no-op.
func NewManager(cfg *config.Config, pipeline *compiler.Pipeline, logger logging.Logger, invalidator Invalidator) *Manager {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if invalidator == nil {
		invalidator = nopInvalidator{}
	}

	return &Manager{
		cfg:         cfg,
		pipeline:    pipeline,
		logger:      logger.WithComponent("cache"),
		invalidator: invalidator,
	}
}

// ArtifactPath derives the artifact location for a template identifier. The
// derivation is stable: the same identifier always yields the same filename,
// independent of template content.
func (m *Manager) ArtifactPath(id string) string {
	sum := sha256.Sum256([]byte(id))
	name := slug(id) + "-" + hex.EncodeToString(sum[:])[:12] + artifactExt

	return filepath.Join(m.cfg.Cache.Dir, name)
}

var slugReplacer = strings.NewReplacer("/", "_", "\\", "_", ".", "_", " ", "_")

func slug(id string) string {
	return slugReplacer.Replace(id)
}

// Ensure returns the location of a valid artifact for the identified
// template, compiling and writing one if the cache misses. Failure before the
// write completes leaves at most the previous valid artifact in place.
func (m *Manager) Ensure(ctx context.Context, id string) (string, error) {
	artifact := m.ArtifactPath(id)

	fresh, err := m.isFresh(id, artifact)
	if err != nil {
		return "", err
	}
	if fresh {
		m.logger.Debug(ctx, "cache hit", "template", id, "artifact", artifact)
		return artifact, nil
	}

	compiled, err := m.pipeline.Compile(ctx, id)
	if err != nil {
		return "", err
	}

	if err := m.write(artifact, GuardHeader+compiled); err != nil {
		return "", err
	}

	if err := m.invalidator.Invalidate(artifact); err != nil {
		m.logger.Warn(ctx, err, "artifact invalidation hook failed", "artifact", artifact)
	}

	m.logger.Info(ctx, "compiled template", "template", id, "artifact", artifact)

	return artifact, nil
}

// isFresh reports whether the existing artifact is at least as new as the
// source template and its whole dependency set. The dependency set is built
// fresh from disk; it is consulted only when an artifact already exists.
func (m *Manager) isFresh(id, artifact string) (bool, error) {
	if !m.cfg.Cache.Enabled {
		return false, nil
	}

	artInfo, err := os.Stat(artifact)
	if err != nil {
		return false, nil
	}

	loader := m.pipeline.Loader()

	srcPath, err := loader.Resolve(id)
	if err != nil {
		return false, err
	}
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false, errors.NewIOError(errors.ErrCodeReadFailed, "stat template", srcPath, err).WithTemplate(id)
	}

	newest := srcInfo.ModTime()

	deps, err := m.pipeline.Dependencies(id)
	if err != nil {
		return false, err
	}
	for _, dep := range deps {
		depPath, err := loader.Resolve(dep)
		if err != nil {
			return false, err
		}
		depInfo, err := os.Stat(depPath)
		if err != nil {
			return false, errors.NewIOError(errors.ErrCodeReadFailed, "stat dependency", depPath, err).WithTemplate(dep)
		}
		if depInfo.ModTime().After(newest) {
			newest = depInfo.ModTime()
		}
	}

	return !artInfo.ModTime().Before(newest), nil
}

// write persists the artifact via a uniquely named temp file and an atomic
// rename. On rename failure the destination is removed and the rename retried
// once, for filesystems that reject rename-over-existing-file.
func (m *Manager) write(artifact, content string) error {
	dir := filepath.Dir(artifact)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewIOError(errors.ErrCodeWriteFailed, "creating cache directory", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tephra-*.tmp")
	if err != nil {
		return errors.NewIOError(errors.ErrCodeWriteFailed, "creating temp artifact", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewIOError(errors.ErrCodeWriteFailed, "writing artifact", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewIOError(errors.ErrCodeWriteFailed, "syncing artifact", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewIOError(errors.ErrCodeWriteFailed, "closing artifact", tmpName, err)
	}

	if err := os.Rename(tmpName, artifact); err != nil {
		os.Remove(artifact)
		if err := os.Rename(tmpName, artifact); err != nil {
			os.Remove(tmpName)
			return errors.NewIOError(errors.ErrCodeRenameFailed, "renaming artifact into place", artifact, err)
		}
	}

	return nil
}

// Clear deletes every artifact in the cache directory. Temp files left by
// crashed writers are removed as well. A missing cache directory is not an
// error.
func (m *Manager) Clear() error {
	entries, err := os.ReadDir(m.cfg.Cache.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewIOError(errors.ErrCodeReadFailed, "reading cache directory", m.cfg.Cache.Dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, artifactExt) && !strings.HasSuffix(name, ".tmp") {
			continue
		}
		path := filepath.Join(m.cfg.Cache.Dir, name)
		if err := os.Remove(path); err != nil {
			return errors.NewIOError(errors.ErrCodeWriteFailed, "removing artifact", path, err)
		}
	}

	return nil
}
