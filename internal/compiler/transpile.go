package compiler

import "regexp"

// A rewrite rule maps one tag pattern to one PHP fragment. Rules are applied
// in a fixed order: narrower forms run before the general forms that would
// otherwise swallow them (triple braces before double, {?= before {?).
type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

func (r rewriteRule) apply(text string) string {
	return r.pattern.ReplaceAllString(text, r.replacement)
}

var (
	// Raw interpolation emits the value unescaped; trusted content only.
	rawEchoRule = rewriteRule{
		pattern:     regexp.MustCompile(`(?s)\{\{\{\s*(.+?)\s*\}\}\}`),
		replacement: `<?= ${1} ?>`,
	}

	// Escaped interpolation HTML-entity-encodes the value. A missing or
	// undefined value degrades to an empty string before escaping.
	escapedEchoRule = rewriteRule{
		pattern:     regexp.MustCompile(`(?s)\{\{\s*(.+?)\s*\}\}`),
		replacement: `<?= htmlspecialchars(${1} ?? '', ENT_QUOTES | ENT_SUBSTITUTE, 'UTF-8') ?>`,
	}

	// Direct expression echo is always available.
	exprEchoRule = rewriteRule{
		pattern:     regexp.MustCompile(`(?s)\{\?=\s*(.+?)\s*\?\}`),
		replacement: `<?= ${1} ?>`,
	}

	// Raw code blocks are gated by configuration; rawCodeDeleteRule removes
	// the tag entirely when execution is not permitted.
	rawCodeRule = rewriteRule{
		pattern:     regexp.MustCompile(`(?s)\{\?\s*(.+?)\s*\?\}`),
		replacement: `<?php ${1} ?>`,
	}
	rawCodeDeleteRule = rewriteRule{
		pattern:     rawCodeRule.pattern,
		replacement: ``,
	}

	// Conditions and loop clauses are passed through verbatim; the
	// transpiler does not parse expressions.
	controlRules = []rewriteRule{
		{regexp.MustCompile(`(?s)\{%\s*if\s*\((.*?)\)\s*%\}`), `<?php if (${1}): ?>`},
		{regexp.MustCompile(`(?s)\{%\s*elseif\s*\((.*?)\)\s*%\}`), `<?php elseif (${1}): ?>`},
		{regexp.MustCompile(`\{%\s*else\s*%\}`), `<?php else: ?>`},
		{regexp.MustCompile(`\{%\s*endif\s*%\}`), `<?php endif; ?>`},
		{regexp.MustCompile(`(?s)\{%\s*foreach\s*\((.*?)\)\s*%\}`), `<?php foreach (${1}): ?>`},
		{regexp.MustCompile(`\{%\s*endforeach\s*%\}`), `<?php endforeach; ?>`},
	}

	// Inheritance markers are consumed before transpilation; any remainder
	// is stripped so it never leaks into the artifact.
	leftoverRules = []rewriteRule{
		{blockTagRe, ``},
		{yieldRe, ``},
		{extendsRe, ``},
	}
)

// Transpile rewrites templating tags in fully-expanded template text into PHP.
// It is a pure function of the text and the raw-code permission flag.
func Transpile(text string, allowRawCode bool) string {
	text = rawEchoRule.apply(text)
	text = escapedEchoRule.apply(text)
	text = exprEchoRule.apply(text)

	if allowRawCode {
		text = rawCodeRule.apply(text)
	} else {
		text = rawCodeDeleteRule.apply(text)
	}

	for _, rule := range controlRules {
		text = rule.apply(text)
	}
	for _, rule := range leftoverRules {
		text = rule.apply(text)
	}

	return text
}
