package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// PHPExecutor runs compiled artifacts with the system php binary. Bindings
// are handed over as JSON in an environment variable and extracted into the
// artifact's scope after the guard constant is defined.
type PHPExecutor struct {
	command string
}

// bootstrap defines the guard constant, decodes the bindings, and requires
// the artifact given as the first script argument.
const bootstrap = `define('TEPHRA_ROOT', true);` +
	`$__tephra = json_decode(getenv('TEPHRA_BINDINGS') ?: '{}', true);` +
	`if (is_array($__tephra)) { extract($__tephra, EXTR_SKIP); }` +
	`unset($__tephra);` +
	`require $argv[1];`

// NewPHPExecutor creates an executor using the php binary on PATH.
func NewPHPExecutor() *PHPExecutor {
	return &PHPExecutor{command: "php"}
}

// Execute implements Executor.
func (e *PHPExecutor) Execute(ctx context.Context, artifactPath string, bindings Bindings, w io.Writer) error {
	if err := e.validateCommand(); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	encoded, err := json.Marshal(bindings)
	if err != nil {
		return fmt.Errorf("encoding bindings: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.command, "-r", bootstrap, artifactPath)
	cmd.Env = append(cmd.Environ(), "TEPHRA_BINDINGS="+string(encoded))
	cmd.Stdout = w

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("php execution timed out: %w", ctx.Err())
		}
		return fmt.Errorf("php execution failed: %w\nOutput: %s", err, stderr.String())
	}

	return nil
}

// validateCommand keeps the executed binary on a fixed allowlist to prevent
// command injection through configuration.
func (e *PHPExecutor) validateCommand() error {
	allowed := map[string]bool{"php": true}
	if !allowed[e.command] {
		return fmt.Errorf("command %q is not allowed", e.command)
	}

	return nil
}
