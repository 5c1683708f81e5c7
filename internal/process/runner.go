package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrProcessFailed is returned when a process cannot start or exits unsuccessfully.
var ErrProcessFailed = errors.New("process: failed")

// Config describes a command to run to completion.
type Config struct {
	// Name is a human-readable identifier for logging and errors.
	Name string

	// Binary is the executable name or path.
	Binary string

	// Args are command-line arguments to pass to the binary.
	Args []string

	// Env are additional environment variables (key=value format).
	// If nil, inherits from parent process.
	Env []string

	// WorkDir is the working directory for the process.
	// If empty, inherits from parent process.
	WorkDir string

	// Interactive connects the process to Stdin/Stdout/Stderr (default: the
	// caller's terminal). Otherwise output is captured and logged.
	Interactive bool
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer

	// Timeout bounds the run. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Result reports how a process finished.
type Result struct {
	// Output is the combined stdout/stderr of a non-interactive run.
	Output   []byte
	ExitCode int
	Duration time.Duration
}

// Logger defines the logging interface for the runner.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Runner starts processes and waits for them to exit.
type Runner struct {
	logger Logger
}

// NewRunner creates a Runner that logs nowhere until SetLogger is called.
func NewRunner() *Runner {
	return &Runner{logger: noopLogger{}}
}

// SetLogger sets the logger for the runner.
func (r *Runner) SetLogger(logger Logger) {
	r.logger = logger
}

// Run starts the process described by cfg and blocks until it exits or ctx
// is cancelled. A non-zero exit status is returned as an error wrapping
// ErrProcessFailed; the Result is still filled in.
func (r *Runner) Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	r.logger.Debug("starting process",
		"name", cfg.Name,
		"binary", cfg.Binary,
		"args", cfg.Args,
	)

	cmd := exec.CommandContext(ctx, cfg.Binary, cfg.Args...) //nolint:gosec // Binary comes from the user's own configuration
	if cfg.Env != nil {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	if cfg.WorkDir != "" {
		cmd.Dir = cfg.WorkDir
	}

	start := time.Now()
	var (
		result Result
		err    error
	)
	if cfg.Interactive {
		err = r.runInteractive(cmd, cfg)
	} else {
		result.Output, err = r.runCaptured(cmd, cfg.Name)
	}
	result.Duration = time.Since(start)

	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		r.logger.Debug("process failed",
			"name", cfg.Name,
			"exit_code", result.ExitCode,
			"error", err,
		)
		return result, fmt.Errorf("%w: %s: %w", ErrProcessFailed, cfg.Name, err)
	}

	r.logger.Debug("process exited",
		"name", cfg.Name,
		"duration", result.Duration,
	)
	return result, nil
}

func (r *Runner) runInteractive(cmd *exec.Cmd, cfg Config) error {
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if cfg.Stdin != nil {
		cmd.Stdin = cfg.Stdin
	}
	if cfg.Stdout != nil {
		cmd.Stdout = cfg.Stdout
	}
	if cfg.Stderr != nil {
		cmd.Stderr = cfg.Stderr
	}
	return cmd.Run()
}

// runCaptured reads stdout and stderr until both close, logging each line,
// then waits for the process.
func (r *Runner) runCaptured(cmd *exec.Cmd, name string) ([]byte, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting: %w", err)
	}

	var (
		mu       sync.Mutex
		combined bytes.Buffer
	)
	var g errgroup.Group
	g.Go(func() error { return r.captureOutput(name, "stdout", stdout, &mu, &combined) })
	g.Go(func() error { return r.captureOutput(name, "stderr", stderr, &mu, &combined) })

	// All reads must finish before Wait closes the pipes.
	captureErr := g.Wait()
	waitErr := cmd.Wait()

	if waitErr != nil {
		return combined.Bytes(), waitErr
	}
	if captureErr != nil {
		return combined.Bytes(), fmt.Errorf("reading output: %w", captureErr)
	}
	return combined.Bytes(), nil
}

// captureOutput reads from the given reader and logs each line.
func (r *Runner) captureOutput(name, stream string, rd io.Reader, mu *sync.Mutex, out *bytes.Buffer) error {
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := scanner.Text()
		r.logger.Debug("process output",
			"name", name,
			"stream", stream,
			"output", line,
		)

		mu.Lock()
		out.WriteString(line)
		out.WriteByte('\n')
		mu.Unlock()
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("%s: %w", stream, err)
	}
	return nil
}
