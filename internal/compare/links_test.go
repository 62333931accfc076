package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JetBrains/jbrdiff/internal/history"
)

func TestIssueURL(t *testing.T) {
	t.Parallel()

	links := DefaultLinks()
	tests := []struct {
		bugID string
		want  string
		ok    bool
	}{
		{bugID: "8210473", want: "https://bugs.openjdk.org/browse/JDK-8210473", ok: true},
		{bugID: "JBR-1234", want: "https://youtrack.jetbrains.com/issue/JBR-1234", ok: true},
		{bugID: "JDK-8210473", ok: false},
		{bugID: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := links.IssueURL(tt.bugID)
		assert.Equal(t, tt.ok, ok, tt.bugID)
		assert.Equal(t, tt.want, got, tt.bugID)
	}

	_, ok := Links{}.IssueURL("8210473")
	assert.False(t, ok)
}

func TestCommitURL(t *testing.T) {
	t.Parallel()

	url, ok := DefaultLinks().CommitURL("abc")
	assert.True(t, ok)
	assert.Equal(t, "https://jetbrains.team/p/jbre/repositories/jbr/commits?commits=abc", url)

	_, ok = Links{}.CommitURL("abc")
	assert.False(t, ok)
}

func TestSortByBugID(t *testing.T) {
	t.Parallel()

	in := []history.Commit{
		{SHA: "1", BugID: "JBR-2"},
		{SHA: "2"},
		{SHA: "3", BugID: "1234"},
		{SHA: "4", BugID: "JBR-1"},
		{SHA: "5"},
	}
	got := SortByBugID(in)
	assert.Equal(t, []string{"2", "5", "3", "4", "1"}, shas(got))
	assert.Equal(t, "1", in[0].SHA, "input must not be reordered")
}
