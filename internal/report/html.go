package report

import (
	"html/template"
	"strings"

	"github.com/JetBrains/jbrdiff/internal/compare"
	"github.com/JetBrains/jbrdiff/internal/history"
)

var page = template.Must(template.New("page").Parse(`<html><body>
<p><b>Commits on <code>{{ .From }}</code> missing from <code>{{ .To }}</code></b></p>
{{- if .Items }}
<ul>
{{- range .Items }}
<li>{{ .Before }}{{ if .IssueURL }}<a href="{{ .IssueURL }}">{{ .BugID }}</a>{{ else }}{{ .BugID }}{{ end }}{{ .After }} ({{ if .CommitURL }}<a href="{{ .CommitURL }}">{{ .ShortSHA }}</a>{{ else }}{{ .ShortSHA }}{{ end }})</li>
{{- end }}
</ul>
{{- end }}
</body></html>
`))

type htmlItem struct {
	Before, BugID, After string
	IssueURL             string
	ShortSHA             string
	CommitURL            string
}

func htmlItems(missing []history.Commit, links compare.Links) []htmlItem {
	items := make([]htmlItem, 0, len(missing))
	for _, c := range compare.SortByBugID(missing) {
		item := htmlItem{Before: c.Subject, ShortSHA: c.ShortSHA()}
		if url, ok := links.IssueURL(c.BugID); ok {
			if before, after, found := strings.Cut(c.Subject, c.BugID); found {
				item.Before, item.BugID, item.After, item.IssueURL = before, c.BugID, after, url
			}
		}
		item.CommitURL, _ = links.CommitURL(c.SHA)
		items = append(items, item)
	}
	return items
}

// HTML renders the missing commits as a page with issue and commit links.
func (p *Printer) HTML(from, to string, missing []history.Commit) error {
	if p.err != nil {
		return p.err
	}
	p.err = page.Execute(p.w, struct {
		From, To string
		Items    []htmlItem
	}{From: from, To: to, Items: htmlItems(missing, p.links)})
	return p.err
}
