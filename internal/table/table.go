package table

import "strings"

type WordScore struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Placeholder fills the cells a narrower phrase does not have.
var Placeholder = WordScore{Word: "", Score: 0}

type Phrase []WordScore

func (p Phrase) Scores() []float64 {
	out := make([]float64, len(p))
	for i, ws := range p {
		out[i] = ws.Score
	}
	return out
}

func (p Phrase) clone() Phrase {
	return append(Phrase(nil), p...)
}

// Table holds phrases that all have the same width.
type Table struct {
	Phrases []Phrase `json:"phrases"`
	Width   int      `json:"width"`
}

func (t Table) clone() Table {
	out := Table{Width: t.Width, Phrases: make([]Phrase, len(t.Phrases))}
	for i, p := range t.Phrases {
		out.Phrases[i] = p.clone()
	}
	return out
}

// Canonicalize escapes the HTML tag opener. It must run exactly once per word.
func Canonicalize(ws WordScore) WordScore {
	return WordScore{Word: strings.ReplaceAll(ws.Word, "<", "&lt"), Score: ws.Score}
}

// Reconcile returns a table and phrase of equal width without touching its
// arguments: a narrower phrase is right-padded, a wider phrase widens every
// phrase already in the table.
func Reconcile(t Table, p Phrase) (Table, Phrase) {
	out := t.clone()
	phrase := p.clone()
	switch {
	case len(phrase) < out.Width:
		phrase = pad(phrase, out.Width)
	case len(phrase) > out.Width:
		for i := range out.Phrases {
			out.Phrases[i] = pad(out.Phrases[i], len(phrase))
		}
		out.Width = len(phrase)
	}
	return out, phrase
}

func pad(p Phrase, width int) Phrase {
	for len(p) < width {
		p = append(p, Placeholder)
	}
	return p
}
