package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tephra-dev/tephra/internal/errors"
)

// Resolver merges a child template's named blocks into its parent's yield
// points, enforcing a strict 1:1 contract: every block must match exactly one
// yield name, every yield must be filled, and no block name may be defined
// twice. Resolution happens entirely at compile time; no block machinery
// survives into the artifact.
type Resolver struct {
	loader   *Loader
	maxDepth int
}

// NewResolver creates an inheritance resolver over the given loader.
// maxDepth bounds extends chains (child, parent, grandparent, ...), which
// would otherwise recurse forever on a cyclic extends declaration.
func NewResolver(loader *Loader, maxDepth int) *Resolver {
	return &Resolver{loader: loader, maxDepth: maxDepth}
}

// Resolve returns the child text unchanged when it declares no parent.
// Otherwise it substitutes the child's blocks into the parent and repeats on
// the merged result until no parent declaration remains.
func (r *Resolver) Resolve(childText string) (string, error) {
	text := childText
	for depth := 0; ; depth++ {
		if depth > r.maxDepth {
			return "", errors.NewIncludeDepthError(depth, "extends chain")
		}

		m := extendsRe.FindStringSubmatch(text)
		if m == nil {
			return text, nil
		}

		merged, err := r.resolveOne(text, m[1])
		if err != nil {
			return "", err
		}
		text = merged
	}
}

type block struct {
	name    string
	content string
}

// resolveOne merges one child into one parent.
func (r *Resolver) resolveOne(childText, parentID string) (string, error) {
	parentText, err := r.loader.LoadStripped(parentID)
	if err != nil {
		return "", err
	}

	// Extract all blocks first so a duplicate definition fails before any
	// substitution occurs.
	var blocks []block
	seen := make(map[string]bool)
	for _, m := range blockRe.FindAllStringSubmatch(childText, -1) {
		name := m[1]
		// The duplicate lives in the child, whose identity the resolver does
		// not know, so no template is attached.
		if seen[name] {
			return "", errors.NewInheritanceError(
				errors.ErrCodeDuplicateBlock,
				fmt.Sprintf("block %q defined more than once", name),
			)
		}
		seen[name] = true
		blocks = append(blocks, block{name: name, content: strings.TrimSpace(m[2])})
	}

	for _, b := range blocks {
		pattern := yieldPattern(b.name)
		if !pattern.MatchString(parentText) {
			return "", errors.NewInheritanceError(
				errors.ErrCodeUnmatchedBlock,
				fmt.Sprintf("block %q is not yielded by parent %q", b.name, parentID),
			)
		}
		parentText = pattern.ReplaceAllLiteralString(parentText, b.content)
	}

	// Every yield point in the parent must have been filled.
	if leftover := yieldRe.FindAllStringSubmatch(parentText, -1); len(leftover) > 0 {
		names := make(map[string]bool)
		for _, m := range leftover {
			names[m[1]] = true
		}
		unmet := make([]string, 0, len(names))
		for name := range names {
			unmet = append(unmet, name)
		}
		sort.Strings(unmet)

		return "", errors.NewInheritanceError(
			errors.ErrCodeUnfilledYield,
			fmt.Sprintf("missing child blocks for insertion points: %s", strings.Join(unmet, ", ")),
		).WithTemplate(parentID).WithContext("yields", unmet)
	}

	return parentText, nil
}
