package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTephraError_Error(t *testing.T) {
	t.Run("includes code, template and message", func(t *testing.T) {
		err := NewPathEscapeError("../etc/passwd").WithTemplate("pages/home.tpl")

		msg := err.Error()
		assert.Contains(t, msg, "[ERR_PATH_ESCAPE]")
		assert.Contains(t, msg, "template:pages/home.tpl")
		assert.Contains(t, msg, "../etc/passwd")
	})

	t.Run("appends cause", func(t *testing.T) {
		cause := stderrors.New("permission denied")
		err := NewIOError(ErrCodeReadFailed, "reading template", "a.tpl", cause)

		assert.Contains(t, err.Error(), "permission denied")
	})
}

func TestTephraError_Unwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewIOError(ErrCodeWriteFailed, "writing artifact", "cache/x.php", cause)

	require.ErrorIs(t, err, cause)
}

func TestTephraError_Is(t *testing.T) {
	t.Run("matches on type and code", func(t *testing.T) {
		err := NewInheritanceError(ErrCodeDuplicateBlock, "block \"body\" defined twice")
		target := &TephraError{Type: ErrorTypeInheritance, Code: ErrCodeDuplicateBlock}

		assert.True(t, stderrors.Is(err, target))
	})

	t.Run("empty target code matches any code of same type", func(t *testing.T) {
		err := NewInheritanceError(ErrCodeUnfilledYield, "missing child blocks")
		target := &TephraError{Type: ErrorTypeInheritance}

		assert.True(t, stderrors.Is(err, target))
	})

	t.Run("different type does not match", func(t *testing.T) {
		err := NewPathEscapeError("x")
		target := &TephraError{Type: ErrorTypeIO}

		assert.False(t, stderrors.Is(err, target))
	})
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"path escape", NewPathEscapeError("x"), IsPathEscape, true},
		{"inheritance", NewInheritanceError(ErrCodeUnmatchedBlock, "m"), IsInheritance, true},
		{"include depth", NewIncludeDepthError(16, "a.tpl"), IsIncludeDepth, true},
		{"io", NewIOError(ErrCodeReadFailed, "m", "p", nil), IsIO, true},
		{"wrapped still matches", fmt.Errorf("compile: %w", NewPathEscapeError("x")), IsPathEscape, true},
		{"plain error", stderrors.New("boom"), IsPathEscape, false},
		{"wrong kind", NewConfigError("bad"), IsIO, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred(tt.err))
		})
	}
}

func TestWithContext(t *testing.T) {
	err := NewInheritanceError(ErrCodeUnfilledYield, "missing child blocks").
		WithContext("yields", []string{"header", "footer"})

	require.NotNil(t, err.Context)
	assert.Equal(t, []string{"header", "footer"}, err.Context["yields"])
}
