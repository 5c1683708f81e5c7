package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerrad567/logisettings/internal/process"
)

// scriptedRunner stands in for an editor by rewriting the file it is given.
type scriptedRunner struct {
	calls   []process.Config
	rewrite func(path string) error
	err     error
}

func (r *scriptedRunner) Run(_ context.Context, cfg process.Config) (process.Result, error) {
	r.calls = append(r.calls, cfg)
	if r.err != nil {
		return process.Result{ExitCode: 1}, r.err
	}
	if r.rewrite != nil {
		if err := r.rewrite(cfg.Args[len(cfg.Args)-1]); err != nil {
			return process.Result{}, err
		}
	}
	return process.Result{}, nil
}

func newTestEditor(t *testing.T, command string, runner Runner) *Editor {
	t.Helper()
	e, err := New(command, runner)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.tempDir = t.TempDir()
	return e
}

func TestEditor_ReturnsEditedContent(t *testing.T) {
	runner := &scriptedRunner{rewrite: func(path string) error {
		return os.WriteFile(path, []byte(`{"edited": true}`), 0600)
	}}
	e := newTestEditor(t, "code --wait", runner)

	got, err := e.Edit(context.Background(), []byte(`{"edited": false}`))
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if string(got) != `{"edited": true}` {
		t.Errorf("Edit() = %s", got)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("runner called %d times, want 1", len(runner.calls))
	}
	call := runner.calls[0]
	if call.Binary != "code" || !call.Interactive {
		t.Errorf("call = %+v, want interactive code", call)
	}
	if len(call.Args) != 2 || call.Args[0] != "--wait" {
		t.Errorf("Args = %v, want [--wait <file>]", call.Args)
	}
	if filepath.Ext(call.Args[1]) != ".json" {
		t.Errorf("temp file %q should have a .json extension", call.Args[1])
	}
	if _, err := os.Stat(call.Args[1]); !os.IsNotExist(err) {
		t.Error("temp file was not removed")
	}
}

func TestEditor_UnchangedContent(t *testing.T) {
	payload := []byte(`{"a": 1}`)
	e := newTestEditor(t, "vi", &scriptedRunner{})

	got, err := e.Edit(context.Background(), payload)
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Edit() = %s, want untouched payload", got)
	}
}

func TestEditor_RunnerFailure(t *testing.T) {
	e := newTestEditor(t, "vi", &scriptedRunner{err: process.ErrProcessFailed})

	_, err := e.Edit(context.Background(), []byte(`{}`))
	if !errors.Is(err, ErrEditorFailed) {
		t.Errorf("Edit() error = %v, want ErrEditorFailed", err)
	}
	if !errors.Is(err, process.ErrProcessFailed) {
		t.Errorf("Edit() error = %v, want wrapped ErrProcessFailed", err)
	}
}

func TestEditor_FileDeletedByEditor(t *testing.T) {
	e := newTestEditor(t, "vi", &scriptedRunner{rewrite: os.Remove})

	_, err := e.Edit(context.Background(), []byte(`{}`))
	if !errors.Is(err, ErrEditorFailed) {
		t.Errorf("Edit() error = %v, want ErrEditorFailed", err)
	}
}

func TestNew_EmptyCommand(t *testing.T) {
	if _, err := New("  ", &scriptedRunner{}); !errors.Is(err, ErrEditorFailed) {
		t.Errorf("New() error = %v, want ErrEditorFailed", err)
	}
}

func TestEditor_RealProcess(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-editor.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nprintf '{\"from\": \"script\"}' > \"$1\"\n"), 0700); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	e := newTestEditor(t, script, process.NewRunner())
	got, err := e.Edit(context.Background(), []byte(`{}`))
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if string(got) != `{"from": "script"}` {
		t.Errorf("Edit() = %s", got)
	}
}
