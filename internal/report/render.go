package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

const wordWrap = 100

// Render writes markdown to w, styled for a terminal when styled is true
// and verbatim otherwise.
func Render(w io.Writer, markdown string, styled bool) error {
	if !styled {
		_, err := io.WriteString(w, markdown)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
