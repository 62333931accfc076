package backend

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func (g *gitCLI) ResolveRef(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = "HEAD"
	}
	out, err := g.runGitCommand(ctx, []string{"rev-parse", "-q", "--verify", ref + "^{commit}"}, true, "git rev-parse")
	if err != nil {
		return "", err
	}
	hash := strings.TrimSpace(out)
	if hash == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownRef, ref)
	}
	return hash, nil
}

func (g *gitCLI) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.runGitCommand(ctx, []string{"branch", "--show-current"}, false, "git branch")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *gitCLI) Log(ctx context.Context, opts LogOptions) (string, error) {
	return g.runGitCommand(ctx, logArgs(opts), false, "git log")
}

func (g *gitCLI) FormatPatch(ctx context.Context, sha string, w io.Writer) error {
	sha = strings.TrimSpace(sha)
	if sha == "" {
		return fmt.Errorf("commit not specified")
	}
	_, err := g.runGit(ctx, []string{"format-patch", "-1", sha, "--stdout"}, w, false, "git format-patch")
	return err
}

func logArgs(opts LogOptions) []string {
	// Pin the format so user config (format.pretty, log.showSignature) cannot
	// change what the parser sees.
	args := []string{"--no-pager", "log", "--no-decorate", "--no-color", "--pretty=medium", "--no-show-signature"}
	if opts.Limit > 0 {
		args = append(args, "-n", strconv.Itoa(opts.Limit))
	}
	ref := strings.TrimSpace(opts.Ref)
	if ref == "" {
		ref = "HEAD"
	}
	args = append(args, ref)
	if path := strings.TrimSpace(opts.Path); path != "" {
		args = append(args, "--", path)
	}
	return args
}
