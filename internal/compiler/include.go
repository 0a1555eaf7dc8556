package compiler

import (
	"strings"

	"github.com/tephra-dev/tephra/internal/errors"
)

// Expander recursively inlines included templates. Unlike dependency
// collection, expansion has no cross-branch visited set, so a direct
// A-includes-A cycle would recurse forever without the depth ceiling.
type Expander struct {
	loader   *Loader
	maxDepth int
}

// NewExpander creates an include expander with the given recursion ceiling.
func NewExpander(loader *Loader, maxDepth int) *Expander {
	return &Expander{loader: loader, maxDepth: maxDepth}
}

// Expand replaces every include reference with the comment-stripped content
// of the referenced template, expanding nested includes at depth+1. Includes
// are expanded left to right, depth first; sibling includes share no state.
func (e *Expander) Expand(text string, depth int) (string, error) {
	var b strings.Builder

	for {
		loc := includeRe.FindStringSubmatchIndex(text)
		if loc == nil {
			b.WriteString(text)
			return b.String(), nil
		}

		ref := text[loc[2]:loc[3]]
		if depth+1 > e.maxDepth {
			return "", errors.NewIncludeDepthError(depth+1, ref)
		}

		inner, err := e.loader.LoadStripped(ref)
		if err != nil {
			return "", err
		}

		expanded, err := e.Expand(inner, depth+1)
		if err != nil {
			return "", err
		}

		b.WriteString(text[:loc[0]])
		b.WriteString(expanded)
		text = text[loc[1]:]
	}
}
