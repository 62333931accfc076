// Package report formats comparison results for people: plain or coloured
// text, an HTML page, upstream-fix notes, warnings and message drift.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/JetBrains/jbrdiff/internal/compare"
	"github.com/JetBrains/jbrdiff/internal/history"
)

type Options struct {
	Color bool
	Dark  bool
	Links compare.Links
}

// Printer writes report sections to one writer. The first write error is
// kept and returned by Err; later writes are skipped.
type Printer struct {
	w     io.Writer
	color bool
	links compare.Links
	pal   palette
	err   error
}

func New(w io.Writer, opts Options) *Printer {
	return &Printer{
		w:     w,
		color: opts.Color,
		links: opts.Links,
		pal:   newPalette(w, opts.Dark),
	}
}

func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) paint(render func(...string) string, s string) string {
	if !p.color || s == "" {
		return s
	}
	return render(s)
}

// Text lists missing commits as "<subject> (<sha8>)", ordered by bug id.
func (p *Printer) Text(missing []history.Commit) error {
	for _, c := range compare.SortByBugID(missing) {
		subject := c.Subject
		if c.BugID != "" {
			if before, after, ok := strings.Cut(subject, c.BugID); ok {
				subject = before + p.paint(p.pal.bugID.Render, c.BugID) + after
			}
		}
		p.printf("%s (%s)\n", subject, p.paint(p.pal.sha.Render, c.ShortSHA()))
	}
	return p.err
}

// Note writes a "[note]" line.
func (p *Printer) Note(format string, args ...any) {
	p.printf("%s %s\n", p.paint(p.pal.note.Render, "[note]"), fmt.Sprintf(format, args...))
}

// Notes reports upstream fixes missing from the repository at targetPath.
func (p *Printer) Notes(missing []history.Commit, targetPath string) error {
	for _, c := range missing {
		p.Note("Fix for %s not found in JBR (%s)", p.paint(p.pal.bugID.Render, c.BugID), targetPath)
		p.printf("    commit %s\n", c.SHA)
		p.printf("    %s\n", c.Subject)
	}
	return p.err
}

func (p *Printer) Warnings(ws []compare.Warning) error {
	for _, w := range ws {
		p.printf("%s %s\n", p.paint(p.pal.warning.Render, "[warning]"), w)
	}
	return p.err
}

// Summary closes a run. It says nothing unless some matches were ambiguous.
func (p *Printer) Summary(res compare.Result) error {
	if !res.ManualReviewRequired() {
		return p.err
	}
	n := len(res.Warnings)
	noun := "matches"
	if n == 1 {
		noun = "match"
	}
	p.printf("%s %d ambiguous %s; manual review of the result is mandatory\n",
		p.paint(p.pal.warning.Render, "[warning]"), n, noun)
	return p.err
}

// Blank writes an empty separator line.
func (p *Printer) Blank() {
	p.printf("\n")
}
