package compiler

import (
	"regexp"
)

// Tag patterns shared by the collector, resolver, expander and transpiler.
// Parent and include paths accept the double-quoted form only.
var (
	extendsRe  = regexp.MustCompile(`\{%\s*extends\s+"([^"]+)"\s*%\}`)
	includeRe  = regexp.MustCompile(`\{%\s*include\s+"([^"]+)"\s*%\}`)
	blockRe    = regexp.MustCompile(`(?s)\{%\s*block\s+([\w.-]+)\s*%\}(.*?)\{%\s*endblock\s*%\}`)
	yieldRe    = regexp.MustCompile(`\{%\s*yield\s+([\w.-]+)\s*%\}`)
	blockTagRe = regexp.MustCompile(`\{%\s*(?:block\s+[\w.-]+|endblock)\s*%\}`)
)

// yieldPattern matches the insertion point for one named block.
func yieldPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\{%\s*yield\s+` + regexp.QuoteMeta(name) + `\s*%\}`)
}
