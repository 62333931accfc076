package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// ErrMalformedLog is returned when the log text does not start with a commit
// header or a header carries no hash.
var ErrMalformedLog = errors.New("malformed git log")

const maxLineSize = 4 << 20

// Parse builds a History from "git log" medium format text. A nil policy
// disables bug id extraction.
func Parse(logText string, policy BugIDPolicy) (*History, error) {
	return ParseReader(strings.NewReader(logText), policy)
}

// ParseReader is Parse for streamed log output.
func ParseReader(r io.Reader, policy BugIDPolicy) (*History, error) {
	if policy == nil {
		policy = PolicyNone
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		commits    []Commit
		block      []string
		blockStart int
		lineNo     int
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		c, err := parseBlock(block, blockStart, policy)
		if err != nil {
			return err
		}
		commits = append(commits, c)
		block = block[:0]
		return nil
	}
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.HasPrefix(line, "commit ") && len(block) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		if len(block) == 0 {
			if line == "" {
				continue
			}
			blockStart = lineNo
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read git log: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return newHistory(commits), nil
}

func parseBlock(lines []string, startLine int, policy BugIDPolicy) (Commit, error) {
	header := strings.Fields(lines[0])
	if len(header) < 2 || header[0] != "commit" {
		return Commit{}, fmt.Errorf("%w: line %d: expected \"commit <sha>\", got %q",
			ErrMalformedLog, startLine, lines[0])
	}
	c := Commit{SHA: header[1]}

	var body strings.Builder
	inBody := false
	for _, l := range lines[1:] {
		if inBody {
			body.WriteString(strings.TrimRightFunc(l, unicode.IsSpace))
			body.WriteByte('\n')
			continue
		}
		if l == "" {
			inBody = true
		}
	}
	// git log separates entries with a blank line, which would otherwise end
	// up in every body but the last one.
	c.Body = strings.TrimRight(body.String(), "\n")
	if c.Body != "" {
		c.Body += "\n"
	}
	subject, _, _ := strings.Cut(c.Body, "\n")
	c.Subject = strings.TrimSpace(subject)
	if c.Subject != "" {
		if id, ok := policy(c.Subject, c.Body); ok {
			c.BugID = id
		}
	}
	return c, nil
}
