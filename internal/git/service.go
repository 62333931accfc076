package git

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	gitbackend "github.com/JetBrains/jbrdiff/internal/git/backend"
	"github.com/JetBrains/jbrdiff/internal/history"
)

// ErrUnknownRef is returned when a requested branch or revision does not exist.
var ErrUnknownRef = gitbackend.ErrUnknownRef

type Service struct {
	backend gitbackend.Backend
}

// HistoryRequest selects the commits to read.
type HistoryRequest struct {
	// Ref is a branch, tag or revision; empty means the checked out HEAD.
	Ref   string
	Path  string
	Limit int
	// Policy extracts bug ids from subjects; nil disables extraction.
	Policy history.BugIDPolicy
}

func (r HistoryRequest) refName() string {
	if r.Ref == "" {
		return "HEAD"
	}
	return r.Ref
}

// Open opens the repository at repoPath with the given backend kind.
func Open(repoPath string, kind gitbackend.Kind) (*Service, error) {
	b, err := gitbackend.Open(repoPath, kind)
	if err != nil {
		return nil, err
	}
	slog.Debug("repository opened", slog.String("path", b.RepoPath()), slog.String("backend", string(kind)))
	return NewService(b), nil
}

func NewService(b gitbackend.Backend) *Service {
	return &Service{backend: b}
}

func (s *Service) RepoPath() string {
	if s == nil || s.backend == nil {
		return ""
	}
	return s.backend.RepoPath()
}

// History reads and parses the log selected by req.
func (s *Service) History(ctx context.Context, req HistoryRequest) (*history.History, error) {
	if s.backend == nil || s.backend.RepoPath() == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	ref := req.refName()
	if _, err := s.backend.ResolveRef(ctx, ref); err != nil {
		return nil, fmt.Errorf("%s: %w", s.backend.RepoPath(), err)
	}
	text, err := s.backend.Log(ctx, gitbackend.LogOptions{Ref: req.Ref, Path: req.Path, Limit: req.Limit})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.backend.RepoPath(), err)
	}
	h, err := history.Parse(text, req.Policy)
	if err != nil {
		return nil, fmt.Errorf("parse log of %s in %s: %w", ref, s.backend.RepoPath(), err)
	}
	slog.Debug("history read",
		slog.String("repo", s.backend.RepoPath()),
		slog.String("ref", ref),
		slog.String("path", req.Path),
		slog.Int("limit", req.Limit),
		slog.Int("commits", h.Len()),
	)
	return h, nil
}

// CurrentBranch returns the checked out branch, or "HEAD" when detached.
func (s *Service) CurrentBranch(ctx context.Context) (string, error) {
	name, err := s.backend.CurrentBranch(ctx)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "HEAD", nil
	}
	return name, nil
}

// ExportPatch writes the commit as an mbox patch to w.
func (s *Service) ExportPatch(ctx context.Context, sha string, w io.Writer) error {
	if err := s.backend.FormatPatch(ctx, sha, w); err != nil {
		return fmt.Errorf("export %s: %w", sha, err)
	}
	return nil
}
