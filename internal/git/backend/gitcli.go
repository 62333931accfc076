package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
)

type gitCLI struct {
	path string
}

func OpenCLI(repoPath string) (Backend, error) {
	if err := ensureMinGitVersion(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	tmp := &gitCLI{path: abs}
	root, err := tmp.runGitCommand(context.Background(), []string{"rev-parse", "--show-toplevel"}, false, "git rev-parse")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("open repository: git rev-parse returned empty root")
	}
	return &gitCLI{path: root}, nil
}

func (g *gitCLI) RepoPath() string {
	if g == nil {
		return ""
	}
	return g.path
}

func (g *gitCLI) runGitCommand(ctx context.Context, args []string, allowExit1 bool, label string) (string, error) {
	var stdout bytes.Buffer
	exitCode, err := g.runGit(ctx, args, &stdout, allowExit1, label)
	if err != nil {
		return "", err
	}
	if exitCode == 1 {
		return "", nil
	}
	return stdout.String(), nil
}

// runGit streams stdout to w. With allowExit1 a clean exit status 1 (no
// stderr output) is reported through exitCode instead of an error.
func (g *gitCLI) runGit(ctx context.Context, args []string, w io.Writer, allowExit1 bool, label string) (exitCode int, err error) {
	if g == nil || g.path == "" {
		return 0, fmt.Errorf("repository root not set")
	}
	cmdArgs := append([]string{"-C", g.path}, args...)
	slog.Debug("running git", slog.String("cmd", shellquote.Join(append([]string{"git"}, cmdArgs...)...)))
	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	var stderr bytes.Buffer
	cmd.Stdout = w
	cmd.Stderr = &stderr
	err = cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, fmt.Errorf("%s: %w", label, ctxErr)
	}
	var exitErr *exec.ExitError
	if allowExit1 && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
		// rev-parse -q signals a missing revision with a silent exit 1
		return 1, nil
	}
	if stderr.Len() > 0 {
		return 0, fmt.Errorf("%s: %v: %s", label, err, firstLine(stderr.String()))
	}
	return 0, fmt.Errorf("%s: %w", label, err)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
