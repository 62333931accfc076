package backend

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	// git's default date format for "git log".
	gitLogDate = "Mon Jan 2 15:04:05 2006 -0700"
	// RFC 2822 date used in patch mails.
	mboxDate = "Mon, 2 Jan 2006 15:04:05 -0700"
)

// writeMediumEntry renders c like "git log --pretty=medium --no-decorate".
func writeMediumEntry(b *strings.Builder, c *object.Commit) {
	fmt.Fprintf(b, "commit %s\n", c.Hash)
	if len(c.ParentHashes) > 1 {
		b.WriteString("Merge:")
		for _, p := range c.ParentHashes {
			fmt.Fprintf(b, " %s", p.String()[:7])
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(b, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
	fmt.Fprintf(b, "Date:   %s\n", c.Author.When.Format(gitLogDate))
	b.WriteByte('\n')
	message := strings.TrimRight(c.Message, "\n")
	if message == "" {
		return
	}
	for line := range strings.SplitSeq(message, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(b, "    %s\n", line)
	}
}

// writeMboxPatch renders the commit the way "git format-patch --stdout" does,
// close enough for "git am".
func writeMboxPatch(w io.Writer, c *object.Commit, patch *object.Patch) error {
	bw := bufio.NewWriter(w)
	subject, body := splitMessage(c.Message)
	fmt.Fprintf(bw, "From %s Mon Sep 17 00:00:00 2001\n", c.Hash)
	fmt.Fprintf(bw, "From: %s <%s>\n", c.Author.Name, c.Author.Email)
	fmt.Fprintf(bw, "Date: %s\n", c.Author.When.Format(mboxDate))
	fmt.Fprintf(bw, "Subject: [PATCH] %s\n\n", subject)
	if body != "" {
		bw.WriteString(body)
		bw.WriteString("\n")
	}
	bw.WriteString("---\n")
	if stats := patch.Stats(); len(stats) > 0 {
		bw.WriteString(stats.String())
		fmt.Fprintf(bw, " %d files changed\n", len(stats))
	}
	bw.WriteString("\n")
	if err := patch.Encode(bw); err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	bw.WriteString("-- \njbrdiff\n\n")
	return bw.Flush()
}

// splitMessage returns the first paragraph folded into one line and the rest
// of the message.
func splitMessage(message string) (subject, body string) {
	message = strings.Trim(message, "\n")
	first, rest, _ := strings.Cut(message, "\n\n")
	subject = strings.Join(strings.Fields(first), " ")
	return subject, strings.TrimRight(rest, "\n")
}
