package backend

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestLogArgs(t *testing.T) {
	t.Parallel()

	base := []string{"--no-pager", "log", "--no-decorate", "--no-color", "--pretty=medium", "--no-show-signature"}
	tests := []struct {
		name string
		opts LogOptions
		want []string
	}{
		{name: "defaults_to_head", opts: LogOptions{}, want: append(slices.Clone(base), "HEAD")},
		{name: "ref", opts: LogOptions{Ref: "origin/jbr17"}, want: append(slices.Clone(base), "origin/jbr17")},
		{
			name: "limit_and_path",
			opts: LogOptions{Ref: "jbr17.b469", Path: "src/hotspot", Limit: 200},
			want: append(slices.Clone(base), "-n", "200", "jbr17.b469", "--", "src/hotspot"),
		},
		{name: "negative_limit_ignored", opts: LogOptions{Ref: "main", Limit: -1}, want: append(slices.Clone(base), "main")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := logArgs(tt.opts)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("logArgs(%+v) = %q, want %q", tt.opts, got, tt.want)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	t.Parallel()

	got := firstLine("\nfatal: bad revision 'nope'\nhint: something\n")
	if got != "fatal: bad revision 'nope'" {
		t.Fatalf("firstLine() = %q", got)
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "", want: KindCLI},
		{in: "cli", want: KindCLI},
		{in: " Native ", want: KindNative},
		{in: "libgit2", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunGitWithoutRoot(t *testing.T) {
	t.Parallel()

	var g *gitCLI
	if _, err := g.Log(context.Background(), LogOptions{}); err == nil {
		t.Fatal("expected error for unset repository root")
	}
}

func TestRunGitCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &gitCLI{path: t.TempDir()}
	_, err := g.CurrentBranch(ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
