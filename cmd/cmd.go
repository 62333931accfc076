// Package cmd wires the jbrdiff command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JetBrains/jbrdiff/internal/config"
	gitbackend "github.com/JetBrains/jbrdiff/internal/git/backend"
	"github.com/JetBrains/jbrdiff/internal/report"
)

// Exit statuses.
const (
	ExitOK     = 0
	ExitFatal  = 1
	ExitReview = 2
)

// errReviewRequired ends a run whose result holds ambiguous matches. The
// warnings have already been printed.
var errReviewRequired = errors.New("manual review required")

// Run executes the command line and returns the process exit status.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errReviewRequired):
		return ExitReview
	case ctx.Err() != nil:
		fmt.Fprintln(stderr, "[fatal] Interrupted")
		return ExitFatal
	default:
		fmt.Fprintf(stderr, "[fatal] %v\n", err)
		return ExitFatal
	}
}

// app carries the global flags and the state derived from them.
type app struct {
	stdout io.Writer
	stderr io.Writer

	verbose    bool
	configPath string
	backend    string
	color      string
	theme      string

	cfg      *config.Config
	darkOnce func() bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "jbrdiff",
		Short: "Find commits missing between JBR branches and upstream OpenJDK",
		Long: "jbrdiff compares git histories. \"branch\" lists commits of one JBR branch\n" +
			"that are missing from another; \"jdk\" lists OpenJDK fixes without a JBR\n" +
			"commit mentioning the same bug id.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/"+config.FileName+")")
	flags.StringVar(&a.backend, "backend", "", "git backend: cli or native (overrides config)")
	flags.StringVar(&a.color, "color", "", "colorize output: auto, always or never (overrides config)")
	flags.StringVar(&a.theme, "theme", "", "color theme: auto, light or dark (overrides config)")

	root.AddCommand(newBranchCmd(a), newJDKCmd(a), newConfigCmd(a), newVersionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Git.Backend = a.backend
	}
	if cmd.Flags().Changed("color") {
		cfg.Output.Color = a.color
	}
	if cmd.Flags().Changed("theme") {
		cfg.Output.Theme = a.theme
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.darkOnce = sync.OnceValue(cfg.Theme().Dark)
	slog.Debug("configuration loaded",
		slog.String("backend", cfg.Git.Backend),
		slog.String("color", cfg.Output.Color),
		slog.String("theme", cfg.Output.Theme),
	)
	return nil
}

func (a *app) dark() bool {
	if a.darkOnce == nil {
		return false
	}
	return a.darkOnce()
}

// printer returns a report printer for w with colour resolved for that writer.
func (a *app) printer(w io.Writer) *report.Printer {
	color := a.cfg.ColorMode().Enabled(w)
	opts := report.Options{Color: color, Links: a.cfg.CompareLinks()}
	if color {
		opts.Dark = a.dark()
	}
	return report.New(w, opts)
}

func (a *app) backendKind() gitbackend.Kind {
	return a.cfg.BackendKind()
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s not a directory", path)
	}
	return nil
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
