package compiler

import "strings"

const (
	commentOpen  = "{#"
	commentClose = "#}"
)

// StripComments removes every {# ... #} region from the template text.
// Regions nest arbitrarily deeply. An unterminated comment discards
// everything from its opening marker to end of input; an unterminated region
// is never emitted.
func StripComments(input string) string {
	out, _ := stripComments(input)
	return out
}

// stripComments additionally reports whether the input ended inside an
// unterminated comment, so the pipeline can surface it.
func stripComments(input string) (string, bool) {
	var b strings.Builder
	depth := 0
	segStart := 0

	i := 0
	for i < len(input) {
		switch {
		case strings.HasPrefix(input[i:], commentOpen):
			if depth == 0 {
				b.WriteString(input[segStart:i])
			}
			depth++
			i += len(commentOpen)
		case depth > 0 && strings.HasPrefix(input[i:], commentClose):
			depth--
			i += len(commentClose)
			if depth == 0 {
				segStart = i
			}
		default:
			i++
		}
	}

	if depth == 0 {
		b.WriteString(input[segStart:])
	}

	return b.String(), depth > 0
}
