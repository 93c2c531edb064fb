package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/solardome/attrviz/internal/style"
	"github.com/solardome/attrviz/internal/table"
)

func TestTerminalShowsWordsAndScores(t *testing.T) {
	out := Terminal(referenceRows(), DefaultTerminalOptions())
	for _, want := range []string{"Word attributions", "foo", "<s>", "bar", "-10345.0", "6.0", "ocean", "-10.46"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in preview:\n%s", want, out)
		}
	}
	if strings.Contains(out, "&lts") {
		t.Fatalf("preview should show the unescaped word:\n%s", out)
	}
}

func TestTerminalTruncatesLongWords(t *testing.T) {
	rows := []table.Row{{
		Mode: style.FontSize,
		Cells: []table.Cell{
			{Word: "antidisestablishmentarianism", Score: 1, Style: style.Descriptor{Mode: style.FontSize, FontSizePercent: 250}},
		},
	}}
	opts := DefaultTerminalOptions()
	opts.Title = ""
	opts.CellWidth = 8

	out := Terminal(rows, opts)
	if strings.Contains(out, "antidisestablishmentarianism") {
		t.Fatalf("long word not truncated:\n%s", out)
	}
	if !strings.Contains(out, truncationTail) {
		t.Fatalf("expected truncation tail in:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > opts.CellWidth {
			t.Fatalf("line %q is %d cells wide, want <= %d", line, w, opts.CellWidth)
		}
	}
}

func TestWordStyleByFontSize(t *testing.T) {
	cases := []struct {
		pct             int
		faint, bold, ul bool
	}{
		{100, true, false, false},
		{250, false, false, false},
		{600, false, true, false},
		{1300, false, true, true},
	}
	for _, tc := range cases {
		s := wordStyle(style.Descriptor{Mode: style.FontSize, FontSizePercent: tc.pct}, defaultTerminalDarkBG)
		if s.GetFaint() != tc.faint || s.GetBold() != tc.bold || s.GetUnderline() != tc.ul {
			t.Fatalf("%d%%: faint=%v bold=%v underline=%v", tc.pct, s.GetFaint(), s.GetBold(), s.GetUnderline())
		}
	}
}

func TestWordStyleColorDarkensBackground(t *testing.T) {
	d := style.Descriptor{Mode: style.FontColor, DarkenBackground: true}
	s := wordStyle(d, "236")
	if bg, ok := s.GetBackground().(lipgloss.Color); !ok || bg != "236" {
		t.Fatalf("expected dark background, got %#v", s.GetBackground())
	}
	d.DarkenBackground = false
	if _, ok := wordStyle(d, "236").GetBackground().(lipgloss.NoColor); !ok {
		t.Fatalf("expected no background for readable colors")
	}
}
