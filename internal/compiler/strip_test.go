package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no comments", "hello {{ $name }}", "hello {{ $name }}"},
		{"simple comment", "a {# gone #} b", "a  b"},
		{"nested comment", "a {# outer {# inner #} still outer #} b", "a  b"},
		{"deeply nested", "x{# 1 {# 2 {# 3 #} 2 #} 1 #}y", "xy"},
		{"only nested comments", "{#{#{# #}#}#}", ""},
		{"adjacent comments", "{# a #}{# b #}mid{# c #}", "mid"},
		{"unterminated discards to end", "keep {# dropped forever", "keep "},
		{"unterminated nested", "keep {# a {# b #} still open", "keep "},
		{"close without open is literal", "a #} b", "a #} b"},
		{"empty input", "", ""},
		{"comment containing tags", "{# {% if ($x) %} {{ $y }} #}done", "done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComments(tt.input))
		})
	}
}

func TestStripComments_Idempotent(t *testing.T) {
	inputs := []string{
		"a {# x #} b",
		"{# {# {# #} #} #}",
		"plain text",
		"tail {# unterminated",
		"{{ $v }} {# c #} {% endif %}",
	}

	for _, input := range inputs {
		once := StripComments(input)
		assert.Equal(t, once, StripComments(once), "input: %q", input)
	}
}

func TestStripComments_ReportsUnterminated(t *testing.T) {
	_, unterminated := stripComments("a {# b")
	assert.True(t, unterminated)

	_, unterminated = stripComments("a {# b #}")
	assert.False(t, unterminated)
}
