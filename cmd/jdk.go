package cmd

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JetBrains/jbrdiff/internal/compare"
	"github.com/JetBrains/jbrdiff/internal/git"
	"github.com/JetBrains/jbrdiff/internal/history"
	"github.com/JetBrains/jbrdiff/internal/patch"
)

type jdkOptions struct {
	jdk         string
	jbr         string
	path        string
	limit       int
	outputDir   string
	showPatches bool
}

func newJDKCmd(a *app) *cobra.Command {
	var opts jdkOptions
	cmd := &cobra.Command{
		Use:     "jdk",
		Short:   "Show bugfix differences between JBR and OpenJDK repositories",
		Example: "  jbrdiff jdk --jdk ./jdk11u --jbr ./JetBrainsRuntime --path src/hotspot --limit 200",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runJDK(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.jdk, "jdk", "", "path to OpenJDK git repo")
	f.StringVar(&opts.jbr, "jbr", "", "path to JBR git repo")
	f.StringVar(&opts.path, "path", "", "limit to changes in this path (relative to git root)")
	f.IntVar(&opts.limit, "limit", -1, "limit to this many log entries in --jdk repo")
	f.StringVarP(&opts.outputDir, "output", "o", "", "save patches to this directory (created if necessary)")
	f.BoolVar(&opts.showPatches, "show-patches", false, "print the patch of every missing fix")
	markRequired(cmd, "jdk", "jbr")
	return cmd
}

func (a *app) runJDK(ctx context.Context, opts jdkOptions) error {
	for _, dir := range []string{opts.jdk, opts.jbr} {
		if err := requireDir(dir); err != nil {
			return err
		}
	}
	jdk, err := git.Open(opts.jdk, a.backendKind())
	if err != nil {
		return err
	}
	jbr, err := git.Open(opts.jbr, a.backendKind())
	if err != nil {
		return err
	}
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		a.explainJDK(ctx, jdk, jbr, opts)
	}

	policy := a.cfg.JDKPolicy()
	var upstream, downstream *history.History
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		upstream, err = jdk.History(gctx, git.HistoryRequest{Path: opts.path, Limit: opts.limit, Policy: policy})
		return err
	})
	g.Go(func() (err error) {
		downstream, err = jbr.History(gctx, git.HistoryRequest{Path: opts.path, Policy: policy})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Debug("histories read", slog.Int("jdk_commits", upstream.Len()), slog.Int("jbr_commits", downstream.Len()))

	res := compare.Missing(upstream, downstream, compare.Options{Mode: compare.Substring, RequireBugID: true})

	out := a.printer(a.stdout)
	if err := out.Notes(res.Missing, opts.jbr); err != nil {
		return err
	}
	if opts.showPatches {
		if err := a.showPatches(ctx, jdk, res.Missing); err != nil {
			return err
		}
	}
	if len(res.Missing) > 0 && opts.outputDir != "" {
		if err := a.exportPatches(ctx, jdk, opts, res.Missing); err != nil {
			return err
		}
	}

	diag := a.printer(a.stderr)
	if err := diag.Warnings(res.Warnings); err != nil {
		return err
	}
	if err := diag.Summary(res); err != nil {
		return err
	}
	if res.ManualReviewRequired() {
		return errReviewRequired
	}
	return nil
}

func (a *app) explainJDK(ctx context.Context, jdk, jbr *git.Service, opts jdkOptions) {
	branch := func(svc *git.Service) string {
		name, err := svc.CurrentBranch(ctx)
		if err != nil {
			return "?"
		}
		return name
	}
	slog.Debug("reading history", slog.String("repo", jdk.RepoPath()), slog.String("branch", branch(jdk)), slog.String("path", opts.path))
	slog.Debug("searching for same fixes", slog.String("repo", jbr.RepoPath()), slog.String("branch", branch(jbr)))
}

func (a *app) exportPatches(ctx context.Context, jdk *git.Service, opts jdkOptions, missing []history.Commit) error {
	out := a.printer(a.stdout)
	out.Blank()
	exp := patch.NewExporter(jdk, opts.jbr)
	saved, err := exp.Export(ctx, opts.outputDir, missing)
	for _, s := range saved {
		out.Note("%s saved as %s", s.Commit.BugID, s.Path)
	}
	if err != nil {
		return err
	}
	script, err := exp.WriteScript(opts.outputDir)
	if err != nil {
		return err
	}
	out.Note("Execute 'bash %s' to apply patches to %s", script, opts.jbr)
	return out.Err()
}

func (a *app) showPatches(ctx context.Context, jdk *git.Service, missing []history.Commit) error {
	color := a.cfg.ColorMode().Enabled(a.stdout)
	style := patch.Style(color && a.dark())
	for _, c := range missing {
		var buf bytes.Buffer
		if err := jdk.ExportPatch(ctx, c.SHA, &buf); err != nil {
			return err
		}
		if !color {
			if _, err := buf.WriteTo(a.stdout); err != nil {
				return err
			}
			continue
		}
		if err := patch.Highlight(a.stdout, buf.String(), style); err != nil {
			return err
		}
	}
	return nil
}
