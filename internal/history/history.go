package history

import (
	"iter"
	"slices"
	"strings"
)

// History is an ordered, read-only list of commits parsed from one log dump.
// Order matches the log (newest first for git log).
type History struct {
	commits []Commit
	// bodies maps a full message body to the indexes of the commits carrying it.
	bodies map[string][]int
}

func newHistory(commits []Commit) *History {
	h := &History{
		commits: commits,
		bodies:  make(map[string][]int, len(commits)),
	}
	for i, c := range commits {
		if c.Body == "" {
			continue
		}
		h.bodies[c.Body] = append(h.bodies[c.Body], i)
	}
	return h
}

// Len returns the number of commits.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.commits)
}

// Commits returns a copy of the commits in log order.
func (h *History) Commits() []Commit {
	if h == nil {
		return nil
	}
	return slices.Clone(h.commits)
}

// All iterates over the commits in log order.
func (h *History) All() iter.Seq2[int, Commit] {
	return func(yield func(int, Commit) bool) {
		if h == nil {
			return
		}
		for i, c := range h.commits {
			if !yield(i, c) {
				return
			}
		}
	}
}

// HasBody reports whether some commit has exactly this message body.
func (h *History) HasBody(body string) bool {
	if h == nil || body == "" {
		return false
	}
	return len(h.bodies[body]) > 0
}

// IsDuplicate reports whether more than one commit has this message body.
func (h *History) IsDuplicate(body string) bool {
	if h == nil || body == "" {
		return false
	}
	return len(h.bodies[body]) > 1
}

// Duplicates returns the bodies shared by several commits, in order of first
// appearance.
func (h *History) Duplicates() []string {
	if h == nil {
		return nil
	}
	var out []string
	for i, c := range h.commits {
		idx := h.bodies[c.Body]
		if len(idx) > 1 && idx[0] == i {
			out = append(out, c.Body)
		}
	}
	return out
}

// Occurrences returns every commit with this message body, in log order.
func (h *History) Occurrences(body string) []Commit {
	if h == nil {
		return nil
	}
	idx := h.bodies[body]
	out := make([]Commit, 0, len(idx))
	for _, i := range idx {
		out = append(out, h.commits[i])
	}
	return out
}

// Contains reports whether some commit body contains s.
func (h *History) Contains(s string) bool {
	if h == nil {
		return false
	}
	for _, c := range h.commits {
		if strings.Contains(c.Body, s) {
			return true
		}
	}
	return false
}

// WithSubject returns the commits whose subject equals subject.
func (h *History) WithSubject(subject string) []Commit {
	if h == nil || subject == "" {
		return nil
	}
	var out []Commit
	for _, c := range h.commits {
		if c.Subject == subject {
			out = append(out, c)
		}
	}
	return out
}
