package git

import (
	"context"
	"errors"
	"fmt"
	"io"

	gitbackend "github.com/JetBrains/jbrdiff/internal/git/backend"
)

type fakeBackend struct {
	repoPath string

	resolveRefFunc    func(ref string) (string, error)
	currentBranchFunc func() (string, error)
	logFunc           func(opts gitbackend.LogOptions) (string, error)
	formatPatchFunc   func(sha string, w io.Writer) error

	lastLogOptions *gitbackend.LogOptions
	resolved       []string
}

func (f *fakeBackend) RepoPath() string { return f.repoPath }

func (f *fakeBackend) ResolveRef(_ context.Context, ref string) (string, error) {
	f.resolved = append(f.resolved, ref)
	if f.resolveRefFunc != nil {
		return f.resolveRefFunc(ref)
	}
	return "", errors.New("unexpected ResolveRef call")
}

func (f *fakeBackend) CurrentBranch(context.Context) (string, error) {
	if f.currentBranchFunc != nil {
		return f.currentBranchFunc()
	}
	return "", errors.New("unexpected CurrentBranch call")
}

func (f *fakeBackend) Log(_ context.Context, opts gitbackend.LogOptions) (string, error) {
	f.lastLogOptions = &opts
	if f.logFunc != nil {
		return f.logFunc(opts)
	}
	return "", errors.New("unexpected Log call")
}

func (f *fakeBackend) FormatPatch(_ context.Context, sha string, w io.Writer) error {
	if f.formatPatchFunc != nil {
		return f.formatPatchFunc(sha, w)
	}
	return errors.New("unexpected FormatPatch call")
}

func knownRefs(refs ...string) func(string) (string, error) {
	return func(ref string) (string, error) {
		for _, r := range refs {
			if r == ref {
				return "0123456789abcdef0123456789abcdef01234567", nil
			}
		}
		return "", fmt.Errorf("%w: %s", gitbackend.ErrUnknownRef, ref)
	}
}
