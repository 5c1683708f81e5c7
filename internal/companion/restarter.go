package companion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/nerrad567/logisettings/internal/process"
)

// ErrUnsupportedPlatform is returned where no restart mechanism is known.
var ErrUnsupportedPlatform = errors.New("companion: restart not supported on this platform")

const (
	launchctlPath = "/bin/launchctl"

	// restartTimeout bounds the launchctl call.
	restartTimeout = 10 * time.Second
)

// Runner runs a process to completion. *process.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, cfg process.Config) (process.Result, error)
}

// Restarter kills the Logi Options+ agent so that launchd starts it again
// and it reloads the settings database.
type Restarter struct {
	service string
	runner  Runner
	goos    string
	uid     func() int
}

// NewRestarter creates a Restarter for the launchd service label.
func NewRestarter(service string, runner Runner) *Restarter {
	return &Restarter{
		service: service,
		runner:  runner,
		goos:    runtime.GOOS,
		uid:     os.Getuid,
	}
}

// Supported reports whether Restart can work on this platform.
func (r *Restarter) Supported() bool {
	return r.goos == "darwin"
}

// Restart signals the agent. On macOS it runs
//
//	launchctl kill SIGKILL gui/<uid>/<service>
//
// and on every other platform it returns ErrUnsupportedPlatform.
func (r *Restarter) Restart(ctx context.Context) error {
	if !r.Supported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, r.goos)
	}

	target := fmt.Sprintf("gui/%d/%s", r.uid(), r.service)
	_, err := r.runner.Run(ctx, process.Config{
		Name:    "launchctl",
		Binary:  launchctlPath,
		Args:    []string{"kill", "SIGKILL", target},
		Timeout: restartTimeout,
	})
	if err != nil {
		return fmt.Errorf("restarting %s: %w", r.service, err)
	}
	return nil
}
