package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/solardome/attrviz/internal/style"
	"github.com/solardome/attrviz/internal/table"
)

const (
	DefaultCellWidth       = 14
	defaultTerminalDarkBG  = "240"
	truncationTail         = "…"
	faintBelowPercent      = 200
	boldFromPercent        = 500
	underlineFromPercent   = 1000
	minTerminalCellWidth   = 4
	terminalCellHorizontal = 1
)

var (
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
)

type TerminalOptions struct {
	Title     string
	CellWidth int
	Precision int
	// DarkBackground is a lipgloss color (ANSI index or hex).
	DarkBackground string
}

func DefaultTerminalOptions() TerminalOptions {
	return TerminalOptions{
		Title:          DefaultTitle,
		CellWidth:      DefaultCellWidth,
		Precision:      DefaultPrecision,
		DarkBackground: defaultTerminalDarkBG,
	}
}

// Terminal renders a fixed-width preview of the table. Font sizes become
// text weight: faint, plain, bold, then bold and underlined.
func Terminal(rows []table.Row, opts TerminalOptions) string {
	width := opts.CellWidth
	if width < minTerminalCellWidth {
		width = DefaultCellWidth
	}
	if opts.DarkBackground == "" {
		opts.DarkBackground = defaultTerminalDarkBG
	}
	cell := lipgloss.NewStyle().Width(width).Padding(0, terminalCellHorizontal)
	inner := width - 2*terminalCellHorizontal

	lines := make([]string, 0, 2*len(rows)+1)
	if opts.Title != "" {
		lines = append(lines, titleStyle.Render(opts.Title))
	}
	for _, row := range rows {
		words := make([]string, 0, len(row.Cells))
		scores := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			text := truncate.StringWithTail(terminalWord(c.Word), uint(inner), truncationTail)
			words = append(words, cell.Render(wordStyle(c.Style, opts.DarkBackground).Render(text)))
			scores = append(scores, cell.Render(scoreStyle.Render(FormatScore(c.Score, opts.Precision))))
		}
		lines = append(lines,
			lipgloss.JoinHorizontal(lipgloss.Top, words...),
			lipgloss.JoinHorizontal(lipgloss.Top, scores...),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// terminalWord undoes the HTML tag-opener escape for display.
func terminalWord(w string) string {
	return strings.ReplaceAll(w, "&lt", "<")
}

func wordStyle(d style.Descriptor, darkBG string) lipgloss.Style {
	s := lipgloss.NewStyle()
	switch d.Mode {
	case style.FontColor:
		s = s.Bold(true).Foreground(lipgloss.Color(d.Color.Hex()))
		if d.DarkenBackground {
			s = s.Background(lipgloss.Color(darkBG))
		}
	default:
		switch pct := d.FontSizePercent; {
		case pct < faintBelowPercent:
			s = s.Faint(true)
		case pct >= underlineFromPercent:
			s = s.Bold(true).Underline(true)
		case pct >= boldFromPercent:
			s = s.Bold(true)
		}
	}
	return s
}
