package history

// Commit is a single entry of a parsed git log.
type Commit struct {
	SHA     string
	Subject string
	// Body is the message as printed by git log (indentation included), one
	// trimmed line per "\n", without trailing blank lines.
	Body  string
	BugID string
}

func (c Commit) HasBugID() bool {
	return c.BugID != ""
}

// ShortSHA returns the abbreviated hash used in reports.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 8 {
		return c.SHA[:8]
	}
	return c.SHA
}
