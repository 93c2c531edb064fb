package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/solardome/attrviz/internal/style"
	"github.com/solardome/attrviz/internal/table"
)

const (
	DefaultTitle          = "Word attributions"
	DefaultDarkBackground = "Gray"
	DefaultPrecision      = 2
)

const tableCSS = `
      table, th, td {border: 1px solid;
                     border-collapse: collapse;
                    }
      td {text-align:center;
          padding:10px;
         }
      tr:nth-child(odd) {background-color: DarkGray;}
`

type HTMLOptions struct {
	Title string
	// DarkBackground is the CSS color behind words whose color is too light
	// to read on the default background.
	DarkBackground string
	Precision      int
}

func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{
		Title:          DefaultTitle,
		DarkBackground: DefaultDarkBackground,
		Precision:      DefaultPrecision,
	}
}

// HTML writes a standalone document with one pair of table rows per phrase:
// styled words on top, rounded scores below. Words are written as they are
// stored in the table; they were escaped once when appended.
func HTML(w io.Writer, rows []table.Row, opts HTMLOptions) error {
	if opts.Precision < 0 {
		return fmt.Errorf("score precision must be >= 0, got %d", opts.Precision)
	}
	if opts.DarkBackground == "" {
		opts.DarkBackground = DefaultDarkBackground
	}
	esc := html.EscapeString

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\">")
	if opts.Title != "" {
		b.WriteString("<title>" + esc(opts.Title) + "</title>")
	}
	b.WriteString("<style>" + tableCSS + "</style></head><body><table>\n")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, c := range row.Cells {
			if c.Style.DarkenBackground {
				b.WriteString(`<td style="background-color : ` + esc(opts.DarkBackground) + `">`)
			} else {
				b.WriteString("<td>")
			}
			b.WriteString(wordSpan(c))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n<tr>")
		for _, c := range row.Cells {
			b.WriteString("<td>" + FormatScore(c.Score, opts.Precision) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table></body></html>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func wordSpan(c table.Cell) string {
	switch c.Style.Mode {
	case style.FontColor:
		return `<span style="color:` + c.Style.Color.CSS() + `; font-size:200%; font-weight:bold;">` + c.Word + "</span>"
	default:
		return `<span style="font-size:` + strconv.Itoa(c.Style.FontSizePercent) + `%;">` + c.Word + "</span>"
	}
}

func WriteHTMLFile(path string, rows []table.Row, opts HTMLOptions) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	var b strings.Builder
	if err := HTML(&b, rows, opts); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// FormatScore rounds the exact binary value of v half to even at precision
// decimals (2.675 is stored just below and becomes 2.67) and prints the
// shortest form that round-trips, always with a fractional part ("6.0",
// "-10345.0"). Magnitudes from 1e16 up, and non-zero magnitudes below 1e-4,
// use exponent notation.
func FormatScore(v float64, precision int) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', precision, 64), 64)
	if err != nil {
		r = v
	}
	abs := math.Abs(r)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(r, 'e', -1, 64)
	}
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
