package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tephra-dev/tephra/internal/config"
	"github.com/tephra-dev/tephra/internal/errors"
)

// Source is one template file read from disk. Sources are immutable once
// read and re-read on every compile attempt so freshness always reflects
// disk state.
type Source struct {
	ID      string
	Path    string
	Content []byte
	ModTime time.Time
}

// Loader resolves template identifiers against the configured template root
// and reads template sources.
type Loader struct {
	root string
	ext  string
}

// NewLoader creates a loader for the configured template root.
func NewLoader(cfg *config.Config) *Loader {
	return &Loader{
		root: cfg.Templates.Root,
		ext:  cfg.Templates.Extension,
	}
}

// Resolve maps a template identifier to an absolute path strictly inside the
// template root. An identifier that escapes the root is a hard error.
func (l *Loader) Resolve(id string) (string, error) {
	if id == "" {
		return "", errors.NewPathEscapeError(id)
	}

	name := id
	if l.ext != "" && filepath.Ext(name) == "" {
		name += l.ext
	}

	absRoot, err := filepath.Abs(l.root)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeReadFailed, "resolving template root", l.root, err)
	}

	// Join cleans the result, collapsing any ".." segments in the identifier.
	candidate := filepath.Join(absRoot, filepath.FromSlash(name))

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.NewPathEscapeError(id)
	}

	return candidate, nil
}

// Load reads a template source and its modification time.
func (l *Loader) Load(id string) (*Source, error) {
	path, err := l.Resolve(id)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeReadFailed, "stat template", path, err).WithTemplate(id)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeReadFailed, "reading template", path, err).WithTemplate(id)
	}

	return &Source{
		ID:      id,
		Path:    path,
		Content: content,
		ModTime: info.ModTime(),
	}, nil
}

// LoadStripped reads a template and returns its comment-stripped text.
func (l *Loader) LoadStripped(id string) (string, error) {
	src, err := l.Load(id)
	if err != nil {
		return "", err
	}

	return StripComments(string(src.Content)), nil
}
