package render

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// wrap width when stdout is not a terminal, wide enough for the case table
const fallbackWrap = 100

// Markdown renders a suite listing for terminal display, wrapped to the
// terminal width so long case names and tag lists stay readable.
// With noColor the raw markdown comes back untouched.
func Markdown(listing string, noColor bool) (string, error) {
	if noColor {
		return listing, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth()),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	result, err := renderer.Render(listing)
	if err != nil {
		return "", fmt.Errorf("render listing: %w", err)
	}

	return result, nil
}

func wrapWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
		return w
	}
	return fallbackWrap
}
