// logisettings inspects and edits the settings database of Logitech
// Logi Options+.
//
// Logi Options+ keeps all of its settings as a single JSON document in a
// one-row SQLite table. This tool prints that document, lists the mice it
// knows about, opens it in an editor, and moves button assignments from one
// mouse to another. Every write is preceded by a backup of the database.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/logisettings/internal/companion"
	"github.com/nerrad567/logisettings/internal/editor"
	"github.com/nerrad567/logisettings/internal/editsession"
	"github.com/nerrad567/logisettings/internal/infrastructure/config"
	"github.com/nerrad567/logisettings/internal/infrastructure/database"
	"github.com/nerrad567/logisettings/internal/infrastructure/logging"
	"github.com/nerrad567/logisettings/internal/process"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// configEnvVar names the environment variable holding the config file path.
const configEnvVar = "LOGISETTINGS_CONFIG"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command line, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command line arguments without the program name
//   - stdout: Destination for command output
//   - stderr: Destination for logs and status messages
//
// Returns:
//   - error: nil on success, or error describing failure
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath string
	dbPath     string
	logLevel   string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "logisettings",
		Short: "Inspect and edit Logi Options+ settings",
		Long: `logisettings reads and rewrites the settings database of Logi Options+.

The database location defaults to the per-user Logi Options+ directory and
can be changed with --db, LOGISETTINGS_DATABASE_PATH or the config file.
Logi Options+ should not be changing its settings while this tool writes.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", os.Getenv(configEnvVar), "path to a YAML config file (env "+configEnvVar+")")
	flags.StringVar(&opts.dbPath, "db", "", "path to the Logi Options+ settings database")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newShowSettingsCommand(opts),
		newListDevicesCommand(opts),
		newEditSettingsCommand(opts),
		newTransferAssignmentsCommand(opts),
	)
	return root
}

func newShowSettingsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show-settings",
		Short: "Print the stored settings document",
		Long: `Print the stored settings document as indented JSON.

Key order is kept as stored. A document that is not valid JSON is printed
unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return a.service.ShowSettings(cmd.Context(), cmd.OutOrStdout())
			})
		},
	}
}

func newListDevicesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-devices",
		Short: "List the mice Logi Options+ has seen",
		Long: `List every mouse in the device history, one per line, as
"<slot prefix>: <name>". The slot prefix is the device identifier used by
transfer-assignments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return a.service.ListDevices(cmd.Context(), cmd.OutOrStdout())
			})
		},
	}
}

func newEditSettingsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit-settings",
		Short: "Edit the stored settings document in an editor",
		Long: `Open the stored settings document in an editor and save the result.

The editor is taken from the config file, LOGISETTINGS_EDITOR, $VISUAL or
$EDITOR, in that order. Nothing is written when the document comes back
unchanged. An edited document that no longer has the expected structure is
rejected. The database is backed up before it is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				outcome, err := a.service.EditSettings(cmd.Context())
				if err != nil {
					return err
				}
				if !outcome.Changed {
					fmt.Fprintln(cmd.ErrOrStderr(), "settings unchanged")
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "settings saved (backup: %s)\n", outcome.BackupPath)
				return nil
			})
		},
	}
}

func newTransferAssignmentsCommand(opts *globalOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "transfer-assignments <from> <to>",
		Short: "Move button assignments from one mouse to another",
		Long: `Move the button assignments of device <from> to device <to> in every profile.

Devices are named by the slot prefix shown by list-devices. In each profile
that has assignments for <from>, the existing assignments of <to> are
replaced by those of <from>. Profiles without assignments for <from> are
left alone, so running the same transfer twice changes nothing.

With --dry-run the resulting document is printed and nothing is written.`,
		Example: "  logisettings transfer-assignments mx-master-3-2b034 mx-master-3s-2b034 --dry-run",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				outcome, err := a.service.TransferAssignments(cmd.Context(), cmd.OutOrStdout(), editsession.TransferRequest{
					From:   args[0],
					To:     args[1],
					DryRun: dryRun,
				})
				if err != nil {
					return err
				}

				for _, p := range outcome.Report.Profiles {
					a.log.Info("profile updated",
						"profile", p.Profile,
						"moved", p.Moved,
						"dropped", p.Dropped,
					)
				}
				if dryRun {
					return nil
				}
				if !outcome.Persisted {
					fmt.Fprintf(cmd.ErrOrStderr(), "no assignments found for %s, nothing changed\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "moved %d assignments in %d profiles (backup: %s)\n",
					outcome.Report.Moved(), len(outcome.Report.Profiles), outcome.BackupPath)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the resulting settings instead of saving them")
	return cmd
}

// app holds the collaborators of one command invocation.
type app struct {
	log     *logging.Logger
	db      *database.DB
	service *editsession.Service
}

// withApp loads configuration, opens the database, runs fn and closes the
// database again.
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(*app) error) error {
	a, err := newApp(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.db.Close(); closeErr != nil {
			a.log.Error("error closing database", "error", closeErr)
		}
	}()

	if err := fn(a); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return nil
}

// newApp wires configuration, logging, storage and the external processes
// into an editsession.Service.
func newApp(ctx context.Context, opts *globalOptions, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.LoadWithOverrides(opts.configPath, config.Overrides{
		DatabasePath: opts.dbPath,
		LogLevel:     opts.logLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logOutput := stderr
	if strings.EqualFold(cfg.Logging.Output, "stdout") {
		logOutput = stdout
	}
	log := logging.NewWithWriter(cfg.Logging, version, logOutput)
	log.Debug("configuration loaded",
		"config", opts.configPath,
		"database", cfg.Database.Path,
		"driver", cfg.Database.Driver,
	)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		Driver:      cfg.Database.Driver,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	store := database.NewSettingsStore(db)

	runner := process.NewRunner()
	runner.SetLogger(log)

	ed, err := editor.New(cfg.Editor.Command, runner)
	if err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("configuring editor: %w", err)
	}

	svcOpts := editsession.Options{
		Store:  store,
		Backup: store,
		Editor: ed,
	}
	if cfg.Companion.Restart {
		restarter := companion.NewRestarter(cfg.Companion.Service, runner)
		if restarter.Supported() {
			svcOpts.Companion = restarter
		} else {
			log.Debug("companion restart not supported on this platform, restart Logi Options+ manually after writes")
		}
	}

	service := editsession.NewService(svcOpts)
	service.SetLogger(log)

	return &app{log: log, db: db, service: service}, nil
}
