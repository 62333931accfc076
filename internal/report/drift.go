package report

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/JetBrains/jbrdiff/internal/history"
)

// DriftDiff returns a unified diff from the target commit's message to the
// source commit's message.
func DriftDiff(source, target history.Commit) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(target.Body),
		B:        difflib.SplitLines(source.Body),
		FromFile: target.ShortSHA(),
		ToFile:   source.ShortSHA(),
		Context:  3,
	})
}

// Drift explains, for a missing commit, which target commits carry the same
// subject under an edited message.
func (p *Printer) Drift(source history.Commit, near []history.Commit) error {
	for _, t := range near {
		diff, err := DriftDiff(source, t)
		if err != nil {
			return err
		}
		p.Note("%s (%s) has the same subject as %s with a different message:",
			source.Subject, source.ShortSHA(), t.ShortSHA())
		for line := range strings.Lines(diff) {
			p.printf("%s", p.colorDiffLine(line))
		}
	}
	return p.err
}

func (p *Printer) colorDiffLine(line string) string {
	if !p.color {
		return line
	}
	text, nl := strings.CutSuffix(line, "\n")
	switch {
	case strings.HasPrefix(text, "+++"), strings.HasPrefix(text, "---"):
		// headers stay plain
	case strings.HasPrefix(text, "+"):
		text = p.pal.added.Render(text)
	case strings.HasPrefix(text, "-"):
		text = p.pal.removed.Render(text)
	case strings.HasPrefix(text, "@@"):
		text = p.pal.hunk.Render(text)
	}
	if nl {
		text += "\n"
	}
	return text
}
