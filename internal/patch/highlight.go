package patch

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Style picks the chroma style matching the terminal background.
func Style(dark bool) *chroma.Style {
	name := "github"
	if dark {
		name = "github-dark"
	}
	if st := styles.Get(name); st != nil {
		return st
	}
	return styles.Fallback
}

// Highlight writes a patch to w with diff syntax colouring.
func Highlight(w io.Writer, text string, style *chroma.Style) error {
	if style == nil {
		style = styles.Fallback
	}
	lexer := lexers.Get("diff")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		return fmt.Errorf("tokenise patch: %w", err)
	}
	return formatters.TTY256.Format(w, style, it)
}
