package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nerrad567/logisettings/internal/process"
)

// ErrEditorFailed is returned when the editor cannot be run or exits unsuccessfully.
var ErrEditorFailed = errors.New("editor: failed")

// tempFilePattern names the file handed to the editor.
const tempFilePattern = "logisettings-*.json"

// Runner runs a process to completion. *process.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, cfg process.Config) (process.Result, error)
}

// Editor opens a payload in the user's editor and returns the saved result.
type Editor struct {
	command []string
	runner  Runner
	tempDir string
}

// New creates an Editor for a command line such as "vi" or "code --wait".
// The path of the file to edit is appended to the arguments.
func New(command string, runner Runner) (*Editor, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no editor command configured", ErrEditorFailed)
	}
	return &Editor{
		command: fields,
		runner:  runner,
	}, nil
}

// Edit writes payload to a temporary file, waits for the editor to exit and
// returns the file's new content. The file is removed afterwards.
func (e *Editor) Edit(ctx context.Context, payload []byte) ([]byte, error) {
	f, err := os.CreateTemp(e.tempDir, tempFilePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp file: %w", ErrEditorFailed, err)
	}
	path := f.Name()
	defer os.Remove(path) //nolint:errcheck // Best effort cleanup

	_, writeErr := f.Write(payload)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		return nil, fmt.Errorf("%w: writing temp file: %w", ErrEditorFailed, err)
	}

	args := append(append([]string{}, e.command[1:]...), path)
	_, err = e.runner.Run(ctx, process.Config{
		Name:        e.command[0],
		Binary:      e.command[0],
		Args:        args,
		Interactive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEditorFailed, err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading edited file: %w", ErrEditorFailed, err)
	}
	return edited, nil
}
