package patch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JetBrains/jbrdiff/internal/history"
)

type fakeSource struct {
	fail    string
	calls   []string
	content func(sha string) string
}

func (f *fakeSource) ExportPatch(_ context.Context, sha string, w io.Writer) error {
	f.calls = append(f.calls, sha)
	if sha == f.fail {
		return errors.New("git format-patch: exit status 128")
	}
	_, err := io.WriteString(w, "From "+sha+" Mon Sep 17 00:00:00 2001\n")
	return err
}

func commits(n int) []history.Commit {
	out := make([]history.Commit, n)
	for i := range n {
		// newest first, like a git log
		id := n - i
		out[i] = history.Commit{
			SHA:   strings.Repeat(string(rune('a'+id%26)), 40),
			BugID: "80000" + string(rune('0'+id%10)),
		}
	}
	return out
}

func TestFileName(t *testing.T) {
	t.Parallel()

	c := history.Commit{SHA: "0123456789abcdef", BugID: "8210473"}
	assert.Equal(t, "0-8210473.patch", FileName(0, 1, c))
	assert.Equal(t, "07-8210473.patch", FileName(7, 2, c))
	assert.Equal(t, "003-01234567.patch", FileName(3, 3, history.Commit{SHA: "0123456789abcdef"}))
}

func TestExportOldestFirst(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out", "patches")
	src := &fakeSource{}
	in := commits(3)

	saved, err := NewExporter(src, "/jbr").Export(context.Background(), dir, in)
	require.NoError(t, err)
	require.Len(t, saved, 3)

	assert.Equal(t, []string{in[2].SHA, in[1].SHA, in[0].SHA}, src.calls)
	assert.Equal(t, filepath.Join(dir, "0-"+in[2].BugID+".patch"), saved[0].Path)
	assert.Equal(t, filepath.Join(dir, "2-"+in[0].BugID+".patch"), saved[2].Path)

	data, err := os.ReadFile(saved[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "From "+in[1].SHA+" Mon Sep 17 00:00:00 2001\n", string(data))
}

func TestExportPadsToCount(t *testing.T) {
	t.Parallel()

	saved, err := NewExporter(&fakeSource{}, "/jbr").Export(context.Background(), t.TempDir(), commits(12))
	require.NoError(t, err)
	require.Len(t, saved, 12)
	assert.True(t, strings.HasPrefix(filepath.Base(saved[0].Path), "00-"))
	assert.True(t, strings.HasPrefix(filepath.Base(saved[11].Path), "11-"))
}

func TestExportNothing(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "never")
	saved, err := NewExporter(&fakeSource{}, "/jbr").Export(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Empty(t, saved)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "directory must not be created without patches")
}

func TestExportFailureRemovesPartialFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := commits(2)
	src := &fakeSource{fail: in[0].SHA}

	saved, err := NewExporter(src, "/jbr").Export(context.Background(), dir, in)
	require.Error(t, err)
	require.Len(t, saved, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{}
	_, err := NewExporter(src, "/jbr").Export(ctx, t.TempDir(), commits(2))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.calls)
}

func TestWriteScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := NewExporter(&fakeSource{}, "/work/Jetbrains Runtime").WriteScript(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ScriptName), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100, "script should be executable")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	script := string(data)
	assert.True(t, strings.HasPrefix(script, "#!/bin/bash\n"))
	assert.Contains(t, script, `GITROOT='/work/Jetbrains Runtime'`)
	assert.Contains(t, script, "PATCHROOT="+dir+"\n")
	assert.Contains(t, script, `git -C "$GITROOT" am "$P"`)
	assert.Contains(t, script, `mv "$P" "$P.failed"`)
	assert.Contains(t, script, `mv "$P" "$P.done"`)
}

func TestHighlight(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	text := "diff --git a/README b/README\n--- a/README\n+++ b/README\n@@ -1 +1,2 @@\n hello\n+world\n"
	require.NoError(t, Highlight(&buf, text, Style(true)))
	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "world")

	buf.Reset()
	require.NoError(t, Highlight(&buf, text, nil))
	assert.Contains(t, buf.String(), "hello")
	assert.NotNil(t, Style(false))
}
