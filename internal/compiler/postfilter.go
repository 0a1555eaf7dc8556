package compiler

import (
	"regexp"
	"strings"
)

// The post-filter runs two independent, order-insensitive cosmetic passes
// over transpiled text. Both passes leave PHP spans untouched so emitted code
// survives verbatim.

var (
	wsRunRe = regexp.MustCompile(`\s{2,}`)

	// Elements whose whitespace is semantically significant.
	sensitiveOpenRe = regexp.MustCompile(`(?i)<(pre|code|textarea|script|style)\b[^>]*>`)
)

// RemoveHTMLComments deletes standard markup comments. Conditional comments
// (content beginning with "[") survive, as does an unterminated comment.
// PHP spans pass through verbatim, so comment markers inside emitted code
// (string literals, heredocs) are never treated as markup.
func RemoveHTMLComments(text string) string {
	var b strings.Builder

	for len(text) > 0 {
		i := strings.Index(text, "<!--")
		if i < 0 {
			b.WriteString(text)
			break
		}

		if p := strings.Index(text, "<?"); p >= 0 && p < i {
			end := strings.Index(text[p:], "?>")
			if end < 0 {
				b.WriteString(text)
				break
			}
			b.WriteString(text[:p+end+2])
			text = text[p+end+2:]
			continue
		}

		j := strings.Index(text[i+4:], "-->")
		if j < 0 {
			// Unterminated markup comment: leave it alone rather than guess.
			b.WriteString(text)
			break
		}

		content := text[i+4 : i+4+j]
		b.WriteString(text[:i])
		if strings.HasPrefix(strings.TrimSpace(content), "[") {
			b.WriteString(text[i : i+4+j+3])
		}
		text = text[i+4+j+3:]
	}

	return b.String()
}

// CollapseWhitespace collapses any run of two or more whitespace characters
// into a single space, outside sensitive spans. Sensitive spans (preformatted
// and raw-text elements, embedded script/style, PHP code) pass through
// unmodified, including their delimiting tags.
func CollapseWhitespace(text string) string {
	var b strings.Builder

	for len(text) > 0 {
		phpStart := strings.Index(text, "<?")
		tagLoc := sensitiveOpenRe.FindStringSubmatchIndex(text)

		switch {
		case phpStart < 0 && tagLoc == nil:
			b.WriteString(collapse(text))
			return b.String()

		case tagLoc == nil || (phpStart >= 0 && phpStart < tagLoc[0]):
			// PHP span comes first.
			b.WriteString(collapse(text[:phpStart]))
			end := strings.Index(text[phpStart:], "?>")
			if end < 0 {
				b.WriteString(text[phpStart:])
				return b.String()
			}
			b.WriteString(text[phpStart : phpStart+end+2])
			text = text[phpStart+end+2:]

		default:
			// Sensitive element comes first.
			b.WriteString(collapse(text[:tagLoc[0]]))
			name := text[tagLoc[2]:tagLoc[3]]
			closeRe := regexp.MustCompile(`(?i)</` + regexp.QuoteMeta(name) + `\s*>`)
			rest := text[tagLoc[1]:]
			closeLoc := closeRe.FindStringIndex(rest)
			if closeLoc == nil {
				b.WriteString(text[tagLoc[0]:])
				return b.String()
			}
			b.WriteString(text[tagLoc[0] : tagLoc[1]+closeLoc[1]])
			text = rest[closeLoc[1]:]
		}
	}

	return b.String()
}

func collapse(s string) string {
	return wsRunRe.ReplaceAllString(s, " ")
}

// PostFilter applies the enabled cosmetic passes.
func PostFilter(text string, trimWhitespace, removeHTMLComments bool) string {
	if removeHTMLComments {
		text = RemoveHTMLComments(text)
	}
	if trimWhitespace {
		text = CollapseWhitespace(text)
	}

	return text
}
