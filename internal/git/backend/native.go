package backend

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"sync"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// native reads the repository through go-git, without a git executable.
// Calls are serialized; go-git storage is not safe for concurrent readers.
type native struct {
	mu   sync.Mutex
	path string
	repo *gitlib.Repository
}

func OpenNative(repoPath string) (Backend, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return newNative(abs, repo), nil
}

func newNative(path string, repo *gitlib.Repository) *native {
	return &native{path: path, repo: repo}
}

func (n *native) RepoPath() string {
	if n == nil {
		return ""
	}
	return n.path
}

func (n *native) ResolveRef(_ context.Context, ref string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resolve(ref)
}

func (n *native) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = "HEAD"
	}
	hash, err := n.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("%w: %s (%v)", ErrUnknownRef, ref, err)
	}
	return hash.String(), nil
}

func (n *native) CurrentBranch(context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	head, err := n.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		// detached HEAD, same as "git branch --show-current"
		return "", nil
	}
	return head.Name().Short(), nil
}

func (n *native) Log(ctx context.Context, opts LogOptions) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	from, err := n.resolve(opts.Ref)
	if err != nil {
		return "", err
	}
	logOpts := &gitlib.LogOptions{
		From:  plumbing.NewHash(from),
		Order: gitlib.LogOrderCommitterTime,
	}
	if filter := pathFilter(opts.Path); filter != nil {
		logOpts.PathFilter = filter
	}
	iter, err := n.repo.Log(logOpts)
	if err != nil {
		return "", fmt.Errorf("read commits: %w", err)
	}
	defer iter.Close()

	var b strings.Builder
	count := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.Limit > 0 && count >= opts.Limit {
			return storer.ErrStop
		}
		if count > 0 {
			b.WriteByte('\n')
		}
		writeMediumEntry(&b, c)
		count++
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("iterate commits: %w", err)
	}
	return b.String(), nil
}

func (n *native) FormatPatch(ctx context.Context, sha string, w io.Writer) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	sha = strings.TrimSpace(sha)
	if sha == "" {
		return fmt.Errorf("commit not specified")
	}
	commit, err := n.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return fmt.Errorf("%w: %s (%v)", ErrUnknownRef, sha, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("read tree of %s: %w", sha, err)
	}
	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return fmt.Errorf("read parent of %s: %w", sha, err)
		}
		if parentTree, err = parent.Tree(); err != nil {
			return fmt.Errorf("read tree of %s: %w", parent.Hash, err)
		}
	}
	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return fmt.Errorf("diff %s: %w", sha, err)
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return fmt.Errorf("patch %s: %w", sha, err)
	}
	return writeMboxPatch(w, commit, patch)
}

// pathFilter mimics a git pathspec for a plain directory or file path.
func pathFilter(p string) func(string) bool {
	p = strings.Trim(path.Clean(filepath.ToSlash(strings.TrimSpace(p))), "/")
	if p == "" || p == "." {
		return nil
	}
	return func(name string) bool {
		return name == p || strings.HasPrefix(name, p+"/")
	}
}
