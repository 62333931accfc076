package compare

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/JetBrains/jbrdiff/internal/history"
)

const (
	DefaultJDKIssueURL = "https://bugs.openjdk.org/browse/JDK-%s"
	DefaultJBRIssueURL = "https://youtrack.jetbrains.com/issue/%s"
	DefaultCommitURL   = "https://jetbrains.team/p/jbre/repositories/jbr/commits?commits=%s"
)

// Links holds fmt templates with a single %s verb for external trackers.
// An empty template disables the corresponding link.
type Links struct {
	JDKIssue string
	JBRIssue string
	Commit   string
}

func DefaultLinks() Links {
	return Links{
		JDKIssue: DefaultJDKIssueURL,
		JBRIssue: DefaultJBRIssueURL,
		Commit:   DefaultCommitURL,
	}
}

// IssueURL maps numeric ids to the JDK tracker and JBR- ids to the JBR one.
func (l Links) IssueURL(bugID string) (string, bool) {
	switch {
	case bugID == "":
		return "", false
	case isDigits(bugID):
		if l.JDKIssue == "" {
			return "", false
		}
		return fmt.Sprintf(l.JDKIssue, bugID), true
	case strings.HasPrefix(bugID, "JBR-"):
		if l.JBRIssue == "" {
			return "", false
		}
		return fmt.Sprintf(l.JBRIssue, bugID), true
	default:
		return "", false
	}
}

func (l Links) CommitURL(sha string) (string, bool) {
	if l.Commit == "" || sha == "" {
		return "", false
	}
	return fmt.Sprintf(l.Commit, sha), true
}

// SortByBugID returns the commits ordered by bug id; commits without one come
// first. The input slice is left untouched.
func SortByBugID(commits []history.Commit) []history.Commit {
	out := slices.Clone(commits)
	slices.SortStableFunc(out, func(a, b history.Commit) int {
		return cmp.Compare(a.BugID, b.BugID)
	})
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return s != ""
}
