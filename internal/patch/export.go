// Package patch saves missing upstream fixes as mbox patches together with a
// script that applies them to the downstream repository.
package patch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"text/template"

	"github.com/kballard/go-shellquote"

	"github.com/JetBrains/jbrdiff/internal/history"
)

// ScriptName is the file written next to the patches.
const ScriptName = "apply.sh"

// Source renders a single commit as a format-patch mbox.
type Source interface {
	ExportPatch(ctx context.Context, sha string, w io.Writer) error
}

type Exporter struct {
	src Source
	// Target is the repository the patches get applied to by apply.sh.
	target string
}

func NewExporter(src Source, target string) *Exporter {
	return &Exporter{src: src, target: target}
}

// Saved is one written patch file.
type Saved struct {
	Commit history.Commit
	Path   string
}

// Export writes commits, given newest first, as numbered patch files in dir
// (oldest gets index 0) and then the apply script. dir is created when
// missing.
func (e *Exporter) Export(ctx context.Context, dir string, commits []history.Commit) ([]Saved, error) {
	if len(commits) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	width := len(strconv.Itoa(len(commits)))
	saved := make([]Saved, 0, len(commits))
	i := 0
	for _, c := range slices.Backward(commits) {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		path := filepath.Join(dir, FileName(i, width, c))
		if err := e.writePatch(ctx, path, c.SHA); err != nil {
			return saved, err
		}
		slog.Debug("patch saved", slog.String("sha", c.SHA), slog.String("path", path))
		saved = append(saved, Saved{Commit: c, Path: path})
		i++
	}
	return saved, nil
}

// WriteScript writes apply.sh into dir and returns its path.
func (e *Exporter) WriteScript(dir string) (string, error) {
	gitRoot, err := filepath.Abs(e.target)
	if err != nil {
		return "", err
	}
	patchRoot, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ScriptName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", ScriptName, err)
	}
	err = RenderScript(f, gitRoot, patchRoot)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", ScriptName, err)
	}
	return path, nil
}

func (e *Exporter) writePatch(ctx context.Context, path, sha string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			err = errors.Join(err, os.Remove(path))
		}
	}()
	return e.src.ExportPatch(ctx, sha, f)
}

// FileName is "<index zero-padded to width>-<bug id>.patch".
func FileName(index, width int, c history.Commit) string {
	id := c.BugID
	if id == "" {
		id = c.ShortSHA()
	}
	return fmt.Sprintf("%0*d-%s.patch", width, index, id)
}

var applyScript = template.Must(template.New(ScriptName).Parse(`#!/bin/bash

GITROOT={{ .GitRoot }}
PATCHROOT={{ .PatchRoot }}

cd "$PATCHROOT" || exit 1
PATCHES=$(find "$PATCHROOT" -name '*.patch' | sort -n)

for P in $PATCHES; do
    if git -C "$GITROOT" am "$P"; then
        mv "$P" "$P.done"
    else
        mv "$P" "$P.failed"
        echo "[ERROR] Patch $P did not apply cleanly. Try applying it manually."
        echo "[NOTE]  Execute this script to apply the remaining patches."
        exit 1
    fi
done

echo "[NOTE] Done applying patches; check $PATCHROOT for .patch and .patch.failed to see if all have been applied."
`))

// RenderScript writes the apply script for the given absolute paths.
func RenderScript(w io.Writer, gitRoot, patchRoot string) error {
	return applyScript.Execute(w, struct {
		GitRoot   string
		PatchRoot string
	}{
		GitRoot:   shellquote.Join(gitRoot),
		PatchRoot: shellquote.Join(patchRoot),
	})
}
