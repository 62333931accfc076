package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownRef is returned when a branch, tag or revision does not exist.
var ErrUnknownRef = errors.New("unknown revision")

// Backend abstracts access to repository data.
//
// The default implementation shells out to the git executable; the native one
// reads the repository with go-git and renders the same text.
type Backend interface {
	RepoPath() string
	ResolveRef(ctx context.Context, ref string) (string, error)
	CurrentBranch(ctx context.Context) (string, error)
	// Log returns "git log --no-decorate" medium format text.
	Log(ctx context.Context, opts LogOptions) (string, error)
	// FormatPatch writes the commit as a single mbox patch.
	FormatPatch(ctx context.Context, sha string, w io.Writer) error
}

type LogOptions struct {
	// Ref is the revision to start from; empty means HEAD.
	Ref string
	// Path limits the log to commits touching this path (relative to the root).
	Path string
	// Limit caps the number of entries; zero or negative means no limit.
	Limit int
}

type Kind string

const (
	KindCLI    Kind = "cli"
	KindNative Kind = "native"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindCLI, "":
		return KindCLI, nil
	case KindNative:
		return KindNative, nil
	default:
		return "", fmt.Errorf("unknown git backend %q (want %s or %s)", raw, KindCLI, KindNative)
	}
}

// Open opens the repository containing repoPath with the requested backend.
func Open(repoPath string, kind Kind) (Backend, error) {
	switch kind {
	case KindNative:
		return OpenNative(repoPath)
	case KindCLI, "":
		return OpenCLI(repoPath)
	default:
		return nil, fmt.Errorf("unknown git backend %q", kind)
	}
}
