// Package cli is the tada command tree. Every command that changes the list
// goes through the view controller, so it is followed by a refresh.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

type App struct {
	ConfigPath string
	Transport  string
	Endpoint   string
	Database   string
	Filter     string
	Theme      string
	NoColor    bool
	Color      bool

	cfg      config.Config
	log      *slog.Logger
	closeLog func() error
}

// usageError marks bad invocations; they exit with code 2.
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: %s", usage)
		}
		return nil
	}
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "tada",
		Short:         "A todo list kept in sync with its host",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive list
  tada

  # Scriptable commands
  tada add "Buy milk"
  tada ls --group
  tada done 2
  tada --filter completed rm 1

  # Serve the list to other clients
  tada serve --addr localhost:8080
  TADA_TRANSPORT=http TADA_ENDPOINT=http://localhost:8080 tada ls
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.closeLog != nil {
			return app.closeLog()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TADA_CONFIG", ""), "Path to config.yaml (default: $XDG_CONFIG_HOME/tada/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.Transport, "transport", "", "How to reach the list: local, http or ws (env TADA_TRANSPORT)")
	cmd.PersistentFlags().StringVar(&app.Endpoint, "endpoint", "", "Host URL for the http and ws transports (env TADA_ENDPOINT)")
	cmd.PersistentFlags().StringVar(&app.Database, "db", "", "Local database: memory, a .json file or a SQLite path (env TADA_DB)")
	cmd.PersistentFlags().StringVar(&app.Filter, "filter", "all", "Which items index arguments count: all, active or completed")
	cmd.PersistentFlags().StringVar(&app.Theme, "theme", envOr("TADA_THEME", "classic"), "Output theme: classic, neon or mono")
	cmd.PersistentFlags().BoolVar(&app.NoColor, "no-color", false, "Disable colors")
	cmd.PersistentFlags().BoolVar(&app.Color, "color", false, "Force colors")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newToggleAllCmd(app))
	cmd.AddCommand(newClearCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newAuthCmd(app))

	return cmd
}

// setup resolves configuration: file, then TADA_* env, then flags.
func (app *App) setup(cmd *cobra.Command) error {
	var (
		cfg config.Config
		err error
	)
	if app.ConfigPath != "" {
		cfg, err = config.LoadFrom(app.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if app.Transport != "" {
		cfg.Transport = strings.ToLower(app.Transport)
	}
	if app.Endpoint != "" {
		cfg.Endpoint = app.Endpoint
	}
	if app.Database != "" {
		cfg.Database = app.Database
	}
	if err := cfg.Validate(); err != nil {
		return usageError{msg: err.Error()}
	}
	if !model.Filter(app.Filter).Valid() {
		return usagef("unknown filter %q (want all, active or completed)", app.Filter)
	}

	// The interactive list owns the terminal, so it logs to a file.
	if cmd.Root() == cmd && cfg.Log.File == "" {
		if dir := config.StateDir(); dir != "" {
			cfg.Log.File = filepath.Join(dir, "tada.log")
		}
	}
	log, closeLog, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	app.cfg, app.log, app.closeLog = cfg, log, closeLog

	ui.SetTheme(app.Theme)
	ui.SetColorForcing(app.Color, app.NoColor)
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// Execute runs the command tree and returns the exit code (0 ok, 1 error, 2 usage).
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	ui.Fail(stderr, err.Error())
	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintln(stderr, ui.Paint(stderr, ui.Current().Muted, "Run `tada --help` for usage."))
		return 2
	}
	return 1
}
