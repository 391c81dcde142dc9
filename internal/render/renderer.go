// Package render draws one refresh of the watch screen.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Frame is everything drawn by one refresh.
type Frame struct {
	// Interval is the configured interval in seconds, shown in the header.
	Interval float64
	// Command is the watched command, shown verbatim in the header.
	Command string
	// Body is the output to display, possibly containing highlight markers.
	Body string
}

// Renderer writes frames to a terminal.
type Renderer struct {
	out        io.Writer
	showHeader bool
	width      int
	header     lipgloss.Style
}

// New creates a Renderer writing to out. The header style is resolved
// against out, so no styling is emitted when out is not a color terminal.
func New(out io.Writer, showHeader bool) *Renderer {
	r := lipgloss.NewRenderer(out)
	return &Renderer{
		out:        out,
		showHeader: showHeader,
		header:     r.NewStyle().Bold(true).TabWidth(lipgloss.NoTabConversion),
	}
}

// WithWidth limits a single-line header to width columns. By default, and
// for zero or less, the header is written exactly. The body is never
// truncated.
func (r *Renderer) WithWidth(width int) *Renderer {
	r.width = width
	return r
}

// Header returns the unstyled header line for f.
func Header(f Frame) string {
	return fmt.Sprintf("Every %ss: %s", FormatInterval(f.Interval), f.Command)
}

// FormatInterval formats seconds with the fewest digits that represent the
// value exactly, e.g. "2" for 2.0 and "0.5" for 0.5.
func FormatInterval(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

// Render moves the cursor home, clears the screen and draws f.
func (r *Renderer) Render(f Frame) error {
	w := bufio.NewWriter(r.out)

	w.WriteString(ansi.CursorHomePosition)
	w.WriteString(ansi.EraseEntireScreen)

	if r.showHeader {
		header := Header(f)
		if !strings.Contains(header, "\n") {
			// Multi-line text would be padded to a block by lipgloss.
			header = r.header.Render(truncate(header, r.width))
		}
		w.WriteString(header)
		w.WriteString("\n\n")
	}

	w.WriteString(f.Body)
	w.WriteString("\n")

	return w.Flush()
}

// truncate shortens s to width visible columns, ending in "...".
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	if width <= 3 {
		return "..."
	}
	return ansi.Truncate(s, width, "...")
}
