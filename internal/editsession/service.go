package editsession

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nerrad567/logisettings/internal/settings"
)

// ErrInvalidEdit is returned when the edited payload is not a valid settings document.
var ErrInvalidEdit = errors.New("editsession: edited settings are invalid")

// Store loads and saves the raw settings payload.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
}

// Backup snapshots the store before a destructive save.
type Backup interface {
	Snapshot(ctx context.Context) (string, error)
}

// Editor hands a payload to the user and returns the result.
type Editor interface {
	Edit(ctx context.Context, payload []byte) ([]byte, error)
}

// Companion asks the owning application to reload its settings.
type Companion interface {
	Restart(ctx context.Context) error
}

// Logger defines the logging interface used by the Service.
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

// Options wires the collaborators of a Service. Editor and Companion may be
// nil: a nil Editor makes EditSettings fail, a nil Companion skips restarts.
type Options struct {
	Store     Store
	Backup    Backup
	Editor    Editor
	Companion Companion
}

// Service implements the logisettings commands.
//
// Every command loads the payload once. Commands that write take a backup
// first and never save when the backup fails.
type Service struct {
	store     Store
	backup    Backup
	editor    Editor
	companion Companion
	logger    Logger
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	return &Service{
		store:     opts.Store,
		backup:    opts.Backup,
		editor:    opts.Editor,
		companion: opts.Companion,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// ShowSettings writes the stored payload to w, indented. A payload that is
// not valid JSON is written as stored.
func (s *Service) ShowSettings(ctx context.Context, w io.Writer) error {
	payload, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	out, err := settings.Indent(payload)
	if err != nil {
		s.logger.Warn("settings are not valid JSON, showing raw payload", "error", err)
		out = payload
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// ListDevices writes one "<slot prefix>: <name>" line per mouse to w.
func (s *Service) ListDevices(ctx context.Context, w io.Writer) error {
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}

	devices := doc.Devices()
	s.logger.Debug("resolved devices",
		"history_entries", len(doc.EverConnectedDevices.Devices),
		"devices", len(devices),
	)

	for _, device := range devices {
		if _, err := fmt.Fprintln(w, device.String()); err != nil {
			return fmt.Errorf("writing device list: %w", err)
		}
	}
	return nil
}

// EditOutcome reports what EditSettings did.
type EditOutcome struct {
	// Changed is false when the editor returned the payload byte for byte.
	Changed    bool
	BackupPath string
}

// EditSettings opens the stored payload in the editor and saves the result.
//
// Nothing is written when the payload comes back unchanged. A changed payload
// must decode as a settings document, otherwise ErrInvalidEdit is returned
// and the store is left alone.
func (s *Service) EditSettings(ctx context.Context) (EditOutcome, error) {
	if s.editor == nil {
		return EditOutcome{}, errors.New("no editor configured")
	}

	payload, err := s.store.Load(ctx)
	if err != nil {
		return EditOutcome{}, fmt.Errorf("loading settings: %w", err)
	}

	edited, err := s.editor.Edit(ctx, payload)
	if err != nil {
		return EditOutcome{}, fmt.Errorf("editing settings: %w", err)
	}
	if bytes.Equal(edited, payload) {
		s.logger.Info("settings unchanged, nothing to save")
		return EditOutcome{}, nil
	}

	if _, err := settings.Decode(edited); err != nil {
		return EditOutcome{}, fmt.Errorf("%w: %w", ErrInvalidEdit, err)
	}

	backupPath, err := s.persist(ctx, edited)
	if err != nil {
		return EditOutcome{}, err
	}
	return EditOutcome{Changed: true, BackupPath: backupPath}, nil
}

// TransferRequest selects the devices of a transfer.
type TransferRequest struct {
	From   string
	To     string
	DryRun bool
}

// TransferOutcome reports what TransferAssignments did.
type TransferOutcome struct {
	Report settings.TransferReport
	// Persisted is true when the new settings were saved.
	Persisted  bool
	BackupPath string
}

// TransferAssignments rebinds button assignments from one device to another
// in every profile.
//
// With DryRun the resulting document is written to w and nothing else
// happens. Otherwise the store is backed up and overwritten, unless the
// transfer changed nothing.
func (s *Service) TransferAssignments(ctx context.Context, w io.Writer, req TransferRequest) (TransferOutcome, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return TransferOutcome{}, err
	}

	report, err := doc.TransferAssignments(req.From, req.To)
	if err != nil {
		return TransferOutcome{}, fmt.Errorf("transferring assignments: %w", err)
	}
	outcome := TransferOutcome{Report: report}

	s.logger.Info("assignments transferred",
		"from", req.From,
		"to", req.To,
		"profiles", len(report.Profiles),
		"moved", report.Moved(),
		"dropped", report.Dropped(),
		"dry_run", req.DryRun,
	)

	encoded, err := settings.EncodeIndent(doc)
	if err != nil {
		return TransferOutcome{}, fmt.Errorf("encoding settings: %w", err)
	}

	if req.DryRun {
		if _, err := w.Write(encoded); err != nil {
			return TransferOutcome{}, fmt.Errorf("writing preview: %w", err)
		}
		return outcome, nil
	}

	if len(report.Profiles) == 0 {
		s.logger.Info("no assignments bound to source device, nothing to save", "from", req.From)
		return outcome, nil
	}

	outcome.BackupPath, err = s.persist(ctx, bytes.TrimSuffix(encoded, []byte("\n")))
	if err != nil {
		return TransferOutcome{}, err
	}
	outcome.Persisted = true
	return outcome, nil
}

func (s *Service) load(ctx context.Context) (*settings.Settings, error) {
	payload, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	doc, err := settings.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return doc, nil
}

// persist snapshots the store, saves payload and restarts the companion.
// A failed restart is logged, not returned.
func (s *Service) persist(ctx context.Context, payload []byte) (string, error) {
	backupPath, err := s.backup.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("backing up settings: %w", err)
	}
	s.logger.Info("settings backed up", "path", backupPath)

	if err := s.store.Save(ctx, payload); err != nil {
		return "", fmt.Errorf("saving settings: %w", err)
	}
	s.logger.Info("settings saved", "bytes", len(payload))

	if s.companion != nil {
		if err := s.companion.Restart(ctx); err != nil {
			s.logger.Warn("could not restart Logi Options+ agent, restart it manually", "error", err)
		} else {
			s.logger.Info("Logi Options+ agent restarted")
		}
	}

	return backupPath, nil
}
