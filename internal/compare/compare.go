// Package compare finds commits of one history that have no counterpart in
// another one.
package compare

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JetBrains/jbrdiff/internal/history"
)

// Mode selects how a source commit is looked up in the target history.
type Mode uint8

const (
	// FullMessage matches when a target commit has exactly the same body.
	FullMessage Mode = iota
	// Substring matches when a target body contains the bug id (or the subject
	// for commits without one).
	Substring
)

func (m Mode) String() string {
	switch m {
	case FullMessage:
		return "full-message"
	case Substring:
		return "substring"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

type Options struct {
	Mode    Mode
	Exclude Excluder
	// RequireBugID skips source commits without a bug id.
	RequireBugID bool
}

// Excluder reports subjects that must not be reported as missing.
type Excluder interface {
	Contains(subject string) bool
}

// Warning flags a match that cannot be attributed to a single source commit
// because several source commits share the same message.
type Warning struct {
	Subject string
	Body    string
	SHAs    []string
}

func (w Warning) String() string {
	shas := make([]string, 0, len(w.SHAs))
	for _, sha := range w.SHAs {
		shas = append(shas, (history.Commit{SHA: sha}).ShortSHA())
	}
	return fmt.Sprintf("commit message %q appears %d times (%s); manual check required",
		w.Subject, len(w.SHAs), strings.Join(shas, ", "))
}

type Result struct {
	Missing  []history.Commit
	Warnings []Warning
	// Skipped counts source commits suppressed by the exclude list.
	Skipped int
}

// ManualReviewRequired reports whether some matches were ambiguous.
func (r Result) ManualReviewRequired() bool {
	return len(r.Warnings) > 0
}

// Missing returns the commits of source that are absent from target. Neither
// history is modified.
func Missing(source, target *history.History, opts Options) Result {
	var res Result
	warned := map[string]struct{}{}
	for _, c := range source.All() {
		if c.Subject == "" {
			continue
		}
		if opts.Exclude != nil && opts.Exclude.Contains(c.Subject) {
			slog.Debug("commit in exclude list", slog.String("sha", c.ShortSHA()), slog.String("subject", c.Subject))
			res.Skipped++
			continue
		}
		if opts.RequireBugID && !c.HasBugID() {
			continue
		}
		slog.Debug("looking for commit",
			slog.String("sha", c.ShortSHA()),
			slog.String("subject", c.Subject),
			slog.String("bug_id", c.BugID),
		)
		if !present(c, target, opts.Mode) {
			res.Missing = append(res.Missing, c)
			continue
		}
		if !source.IsDuplicate(c.Body) {
			continue
		}
		if _, ok := warned[c.Body]; ok {
			continue
		}
		warned[c.Body] = struct{}{}
		res.Warnings = append(res.Warnings, newWarning(c, source))
	}
	return res
}

func present(c history.Commit, target *history.History, mode Mode) bool {
	switch mode {
	case Substring:
		key := c.BugID
		if key == "" {
			key = c.Subject
		}
		return target.Contains(key)
	default:
		return target.HasBody(c.Body)
	}
}

func newWarning(c history.Commit, source *history.History) Warning {
	w := Warning{Subject: c.Subject, Body: c.Body}
	for _, dup := range source.Occurrences(c.Body) {
		w.SHAs = append(w.SHAs, dup.SHA)
	}
	return w
}

// NearMatches returns target commits with the same subject as c but a
// different body, which usually means the message was edited when the change
// was ported.
func NearMatches(c history.Commit, target *history.History) []history.Commit {
	var out []history.Commit
	for _, t := range target.WithSubject(c.Subject) {
		if t.Body != c.Body {
			out = append(out, t)
		}
	}
	return out
}
