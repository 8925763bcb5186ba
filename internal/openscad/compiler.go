// Package openscad wraps invocation of the OpenSCAD binary as a child
// process. It is the only place the pipeline touches process spawning.
package openscad

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/harshilgor/prompt-to-3d/internal/domain"
)

const defaultTimeout = 2 * time.Minute

// Compiler invokes an external OpenSCAD binary. It is stateless and safe to
// use concurrently for distinct job ids; distinct output paths guarantee no
// cross-job interference.
type Compiler struct {
	binary  string
	timeout time.Duration
}

// Result captures the diagnostics of one compiler run. The adapter never
// interprets the text; it gates only on exit status.
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// New constructs a compiler around the given binary path. A non-positive
// timeout falls back to the default ceiling.
func New(binary string, timeout time.Duration) *Compiler {
	if binary == "" {
		binary = "openscad"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Compiler{binary: binary, timeout: timeout}
}

// Compile runs the binary against sourcePath, writing the mesh to outPath.
// The process is killed once the wall-clock ceiling passes; that case is
// reported as domain.ErrCompileTimeout, distinct from a non-zero exit, which
// wraps domain.ErrCompilationFailed with the captured stderr.
func (c *Compiler) Compile(ctx context.Context, sourcePath, outPath string) (Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.binary, "-o", outPath, sourcePath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Orphaned grandchildren inheriting the pipes must not hold Wait open
	// after the process is killed.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("openscad exceeded %s ceiling: %w", c.timeout, domain.ErrCompileTimeout)
		}
		diag := strings.TrimSpace(result.Stderr)
		if diag == "" {
			diag = err.Error()
		}
		return result, fmt.Errorf("openscad: %s: %w", diag, domain.ErrCompilationFailed)
	}
	return result, nil
}

// Version reports the version string of the configured binary, used on the
// health surface. The probe is bounded so a wedged binary cannot hang a
// health check.
func (c *Compiler) Version(ctx context.Context) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, c.binary, "--version")
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("probe %s: %w", c.binary, err)
	}
	return strings.TrimSpace(combined.String()), nil
}
