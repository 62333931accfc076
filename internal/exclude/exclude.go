// Package exclude reads and writes the list of commit subjects that a branch
// comparison should ignore.
//
// The file format is line based: lines starting with '#' are comments, every
// other non-empty line is a commit subject matched verbatim. Write produces a
// file in the same format so a reviewed report can be fed back as input.
package exclude

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/JetBrains/jbrdiff/internal/history"
)

type Set map[string]struct{}

func NewSet(subjects ...string) Set {
	s := make(Set, len(subjects))
	for _, subject := range subjects {
		s[subject] = struct{}{}
	}
	return s
}

func (s Set) Contains(subject string) bool {
	_, ok := s[subject]
	return ok
}

// Load reads an exclude list from path.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open exclude list: %w", err)
	}
	defer f.Close()
	set, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read exclude list %s: %w", path, err)
	}
	return set, nil
}

func Read(r io.Reader) (Set, error) {
	set := Set{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// Write stores commits oldest first (commits are expected in log order), each
// as a "# <sha>" comment followed by its subject.
func Write(path string, commits []history.Commit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create exclude list: %w", err)
	}
	if err := Encode(f, commits); err != nil {
		_ = f.Close()
		return fmt.Errorf("write exclude list %s: %w", path, err)
	}
	return f.Close()
}

func Encode(w io.Writer, commits []history.Commit) error {
	bw := bufio.NewWriter(w)
	for _, c := range slices.Backward(commits) {
		if _, err := fmt.Fprintf(bw, "# %s\n%s\n", c.SHA, c.Subject); err != nil {
			return err
		}
	}
	return bw.Flush()
}
