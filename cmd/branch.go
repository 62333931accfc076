package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JetBrains/jbrdiff/internal/compare"
	"github.com/JetBrains/jbrdiff/internal/exclude"
	"github.com/JetBrains/jbrdiff/internal/git"
	"github.com/JetBrains/jbrdiff/internal/history"
	"github.com/JetBrains/jbrdiff/internal/watch"
)

type branchOptions struct {
	repo    string
	from    string
	to      string
	path    string
	limit   int
	html    bool
	output  string
	exclude string
	watch   bool
	drift   bool
}

func newBranchCmd(a *app) *cobra.Command {
	var opts branchOptions
	cmd := &cobra.Command{
		Use:     "branch",
		Short:   "Show commit differences between branches of a JBR repository",
		Example: "  jbrdiff branch --jbr ./JetBrainsRuntime --from origin/jbr17 --to jbr17.b469 --path src/hotspot --limit 200",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBranch(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.repo, "jbr", "", "path to JBR git root")
	f.StringVar(&opts.from, "from", "", "branch to take commits from")
	f.StringVar(&opts.to, "to", "", "branch to apply new commits to")
	f.StringVar(&opts.path, "path", "", "limit to changes in this path (relative to git root)")
	f.IntVar(&opts.limit, "limit", -1, "limit to this many log entries on each branch")
	f.BoolVar(&opts.html, "html", false, "print out HTML rather than plain text")
	f.StringVarP(&opts.output, "output", "o", "", "write the missing commits to this file to be used as exclude list later")
	f.StringVar(&opts.exclude, "exclude", "", "exclude commits listed in the given file (an edited -o file works)")
	f.BoolVar(&opts.watch, "watch", false, "re-run whenever the repository or the exclude file changes")
	f.BoolVar(&opts.drift, "drift", false, "show message diffs for missing commits whose subject exists on the target")
	markRequired(cmd, "jbr", "from", "to")
	return cmd
}

func (a *app) runBranch(ctx context.Context, opts branchOptions) error {
	if err := requireDir(opts.repo); err != nil {
		return err
	}
	svc, err := git.Open(opts.repo, a.backendKind())
	if err != nil {
		return err
	}
	slog.Debug("reading history", slog.String("repo", svc.RepoPath()), slog.String("path", opts.path), slog.Int("limit", opts.limit))
	slog.Debug("searching for missing fixes", slog.String("to", opts.to), slog.String("from", opts.from))

	res, err := a.branchOnce(ctx, svc, opts)
	if err != nil {
		return err
	}
	if opts.watch {
		target := watch.Repository(svc.RepoPath())
		target.AddFile(opts.exclude)
		a.printer(a.stderr).Note("watching %s for changes; press Ctrl-C to stop", svc.RepoPath())
		return watch.Run(ctx, target, watch.DefaultDelay, func(ctx context.Context) error {
			_, err := a.branchOnce(ctx, svc, opts)
			return err
		})
	}
	if res.ManualReviewRequired() {
		return errReviewRequired
	}
	return nil
}

// branchOnce runs one comparison and prints its report.
func (a *app) branchOnce(ctx context.Context, svc *git.Service, opts branchOptions) (compare.Result, error) {
	policy := a.cfg.BranchPolicy()
	var source, target *history.History
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		source, err = svc.History(gctx, git.HistoryRequest{Ref: opts.from, Path: opts.path, Limit: opts.limit, Policy: policy})
		return err
	})
	g.Go(func() (err error) {
		target, err = svc.History(gctx, git.HistoryRequest{Ref: opts.to, Path: opts.path, Limit: opts.limit, Policy: policy})
		return err
	})
	if err := g.Wait(); err != nil {
		return compare.Result{}, err
	}
	slog.Debug("histories read",
		slog.Int("from_commits", source.Len()), slog.String("from", opts.from),
		slog.Int("to_commits", target.Len()), slog.String("to", opts.to),
	)

	var excluded exclude.Set
	if opts.exclude != "" {
		set, err := exclude.Load(opts.exclude)
		if err != nil {
			return compare.Result{}, err
		}
		excluded = set
	}
	res := compare.Missing(source, target, compare.Options{Mode: compare.FullMessage, Exclude: excluded})

	out := a.printer(a.stdout)
	if opts.html {
		err := out.HTML(opts.from, opts.to, res.Missing)
		if err != nil {
			return res, err
		}
	} else if err := out.Text(res.Missing); err != nil {
		return res, err
	}

	diag := a.printer(a.stderr)
	if opts.drift {
		for _, c := range res.Missing {
			if near := compare.NearMatches(c, target); len(near) > 0 {
				if err := diag.Drift(c, near); err != nil {
					return res, err
				}
			}
		}
	}
	if len(res.Missing) > 0 && opts.output != "" {
		if err := exclude.Write(opts.output, res.Missing); err != nil {
			return res, err
		}
		diag.Note("%d missing commits written to %s", len(res.Missing), opts.output)
	}
	if err := diag.Warnings(res.Warnings); err != nil {
		return res, err
	}
	if err := diag.Summary(res); err != nil {
		return res, fmt.Errorf("write summary: %w", err)
	}
	return res, nil
}
