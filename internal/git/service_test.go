package git

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	gitbackend "github.com/JetBrains/jbrdiff/internal/git/backend"
	"github.com/JetBrains/jbrdiff/internal/history"
)

const sampleLog = `commit 1111111111111111111111111111111111111111
Author: Jane Doe <jane@example.com>
Date:   Tue Mar 5 10:11:12 2024 +0100

    JBR-2 Second fix

commit 2222222222222222222222222222222222222222
Author: Jane Doe <jane@example.com>
Date:   Mon Mar 4 10:11:12 2024 +0100

    JBR-1 First fix
`

func TestServiceHistory(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		repoPath:       "/repo",
		resolveRefFunc: knownRefs("origin/jbr17"),
		logFunc: func(gitbackend.LogOptions) (string, error) {
			return sampleLog, nil
		},
	}
	svc := NewService(fb)

	h, err := svc.History(context.Background(), HistoryRequest{
		Ref:    "origin/jbr17",
		Path:   "src/hotspot",
		Limit:  200,
		Policy: history.PolicyPrefix,
	})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if h.Len() != 2 {
		t.Fatalf("expected 2 commits, got %d", h.Len())
	}
	if got := h.Commits()[1].BugID; got != "JBR-1" {
		t.Fatalf("unexpected bug id %q", got)
	}
	want := gitbackend.LogOptions{Ref: "origin/jbr17", Path: "src/hotspot", Limit: 200}
	if fb.lastLogOptions == nil || *fb.lastLogOptions != want {
		t.Fatalf("Log called with %+v, want %+v", fb.lastLogOptions, want)
	}
}

func TestServiceHistoryDefaultsToHEAD(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		repoPath:       "/repo",
		resolveRefFunc: knownRefs("HEAD"),
		logFunc:        func(gitbackend.LogOptions) (string, error) { return "", nil },
	}
	h, err := NewService(fb).History(context.Background(), HistoryRequest{})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if h.Len() != 0 {
		t.Fatalf("expected empty history, got %d commits", h.Len())
	}
	if len(fb.resolved) != 1 || fb.resolved[0] != "HEAD" {
		t.Fatalf("expected HEAD to be resolved, got %v", fb.resolved)
	}
}

func TestServiceHistoryUnknownRef(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{repoPath: "/repo", resolveRefFunc: knownRefs("main")}
	_, err := NewService(fb).History(context.Background(), HistoryRequest{Ref: "jbr17.b469"})
	if !errors.Is(err, ErrUnknownRef) {
		t.Fatalf("expected ErrUnknownRef, got %v", err)
	}
	if fb.lastLogOptions != nil {
		t.Fatal("Log must not run for an unknown ref")
	}
}

func TestServiceHistoryParseError(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		repoPath:       "/repo",
		resolveRefFunc: knownRefs("HEAD"),
		logFunc: func(gitbackend.LogOptions) (string, error) {
			return "error: object file is empty\n" + sampleLog, nil
		},
	}
	_, err := NewService(fb).History(context.Background(), HistoryRequest{})
	if !errors.Is(err, history.ErrMalformedLog) {
		t.Fatalf("expected ErrMalformedLog, got %v", err)
	}
}

func TestServiceHistoryLogError(t *testing.T) {
	t.Parallel()

	boom := errors.New("git log: exit status 128: fatal: bad object")
	fb := &fakeBackend{
		repoPath:       "/repo",
		resolveRefFunc: knownRefs("HEAD"),
		logFunc:        func(gitbackend.LogOptions) (string, error) { return "", boom },
	}
	_, err := NewService(fb).History(context.Background(), HistoryRequest{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped log error, got %v", err)
	}
	if !strings.Contains(err.Error(), "/repo") {
		t.Fatalf("error should name the repository: %v", err)
	}
}

func TestServiceHistoryWithoutRoot(t *testing.T) {
	t.Parallel()

	if _, err := NewService(&fakeBackend{}).History(context.Background(), HistoryRequest{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestServiceCurrentBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  string
		want string
	}{
		{name: "branch", out: "jbr17", want: "jbr17"},
		{name: "detached", out: "", want: "HEAD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fb := &fakeBackend{repoPath: "/repo", currentBranchFunc: func() (string, error) { return tt.out, nil }}
			got, err := NewService(fb).CurrentBranch(context.Background())
			if err != nil {
				t.Fatalf("CurrentBranch() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("CurrentBranch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServiceExportPatch(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		repoPath: "/repo",
		formatPatchFunc: func(sha string, w io.Writer) error {
			if sha == "bad" {
				return errors.New("boom")
			}
			_, err := io.WriteString(w, "From "+sha+"\n")
			return err
		},
	}
	svc := NewService(fb)

	var buf bytes.Buffer
	if err := svc.ExportPatch(context.Background(), "abc", &buf); err != nil {
		t.Fatalf("ExportPatch() error = %v", err)
	}
	if buf.String() != "From abc\n" {
		t.Fatalf("unexpected patch %q", buf.String())
	}
	if err := svc.ExportPatch(context.Background(), "bad", &buf); err == nil || !strings.Contains(err.Error(), "export bad") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
