package table

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/solardome/attrviz/internal/binning"
	"github.com/solardome/attrviz/internal/style"
)

type Method string

const (
	MethodQuantile Method = "quantile"
	MethodLinear   Method = "linear"
)

// Scope selects the sample quantile edges are derived from.
type Scope string

const (
	ScopePhrase Scope = "phrase"
	ScopePooled Scope = "pooled"
)

const DefaultNumBins = 5

var (
	ErrNonFiniteScore = errors.New("score is not finite")
	ErrInvalidOptions = errors.New("invalid accumulator options")
)

type Options struct {
	NumBins int
	Method  Method
	Scope   Scope
}

// Accumulator owns the growing table of phrases, the style mode each phrase
// was added with, and the word to bin lookup. It is not safe for concurrent
// use; callers must serialize access.
type Accumulator struct {
	opts   Options
	table  Table
	modes  []style.Mode
	lookup map[string]int
}

type Cell struct {
	Word  string           `json:"word"`
	Score float64          `json:"score"`
	Bin   int              `json:"bin"`
	Style style.Descriptor `json:"style"`
}

type Row struct {
	Mode  style.Mode `json:"mode"`
	Cells []Cell     `json:"cells"`
}

func New(opts Options) (*Accumulator, error) {
	if opts.NumBins == 0 {
		opts.NumBins = DefaultNumBins
	}
	if opts.Method == "" {
		opts.Method = MethodQuantile
	}
	if opts.Scope == "" {
		opts.Scope = ScopePhrase
	}
	if opts.NumBins < 1 {
		return nil, fmt.Errorf("%w: bin count %d", ErrInvalidOptions, opts.NumBins)
	}
	switch opts.Method {
	case MethodQuantile, MethodLinear:
	default:
		return nil, fmt.Errorf("%w: binning method %q", ErrInvalidOptions, opts.Method)
	}
	switch opts.Scope {
	case ScopePhrase, ScopePooled:
	default:
		return nil, fmt.Errorf("%w: binning scope %q", ErrInvalidOptions, opts.Scope)
	}
	return &Accumulator{opts: opts, lookup: map[string]int{}}, nil
}

func (a *Accumulator) Append(words []WordScore, mode style.Mode) error {
	return a.AppendAll([][]WordScore{words}, mode)
}

// AppendAll adds several phrases with the same style mode and rebuilds the
// lookup once. Nothing is mutated when any step fails.
func (a *Accumulator) AppendAll(phrases [][]WordScore, mode style.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", style.ErrUnknownMode, string(mode))
	}
	for i, words := range phrases {
		for j, ws := range words {
			if math.IsNaN(ws.Score) || math.IsInf(ws.Score, 0) {
				return fmt.Errorf("%w: phrase %d word %d (%q)", ErrNonFiniteScore, i, j, ws.Word)
			}
		}
	}

	next := a.table
	modes := append([]style.Mode(nil), a.modes...)
	for _, words := range phrases {
		phrase := make(Phrase, len(words))
		for i, ws := range words {
			phrase[i] = Canonicalize(ws)
		}
		reconciled, padded := Reconcile(next, phrase)
		reconciled.Phrases = append(reconciled.Phrases, padded)
		next = reconciled
		modes = append(modes, mode)
	}
	lookup, err := a.buildLookup(next)
	if err != nil {
		return err
	}
	a.table, a.modes, a.lookup = next, modes, lookup
	return nil
}

// buildLookup computes every word's bin in t from scratch. When a word
// occurs in several phrases, the last phrase wins.
func (a *Accumulator) buildLookup(t Table) (map[string]int, error) {
	var pooled []float64
	if a.opts.Scope == ScopePooled {
		for _, p := range t.Phrases {
			pooled = append(pooled, p.Scores()...)
		}
	}
	lookup := make(map[string]int, len(a.lookup))
	for i, p := range t.Phrases {
		if len(p) == 0 {
			continue
		}
		sample := p.Scores()
		if pooled != nil {
			sample = pooled
		}
		ids, err := a.binPhrase(p.Scores(), sample)
		if err != nil {
			return nil, fmt.Errorf("bin phrase %d: %w", i, err)
		}
		for j, ws := range p {
			lookup[ws.Word] = ids[j]
		}
	}
	return lookup, nil
}

func (a *Accumulator) binPhrase(scores, sample []float64) ([]int, error) {
	switch a.opts.Method {
	case MethodLinear:
		return linearBins(scores, sample, a.opts.NumBins)
	default:
		edges, err := binning.Edges(sample, binning.Fractions(a.opts.NumBins))
		if err != nil {
			return nil, err
		}
		return binning.Assign(scores, edges), nil
	}
}

// linearBins splits the sample's min..max range into equal-width bins. A
// constant sample puts everything in bin 0.
func linearBins(scores, sample []float64, n int) ([]int, error) {
	lo, hi := slices.Min(sample), slices.Max(sample)
	ids := make([]int, len(scores))
	if hi == lo {
		return ids, nil
	}
	b, err := binning.NewBinner(0, 1, 0, 1, n)
	if err != nil {
		return nil, err
	}
	for i, s := range scores {
		id, err := b.SelectBin(normalize(s, lo, hi))
		if err != nil {
			return nil, err
		}
		if id < 0 {
			return nil, fmt.Errorf("score %g fell outside every bin", s)
		}
		ids[i] = id
	}
	return ids, nil
}

// normalize maps s from [lo, hi] onto [0, 1]. Ranges wider than the largest
// float64 are halved first.
func normalize(s, lo, hi float64) float64 {
	if span := hi - lo; !math.IsInf(span, 0) {
		return (s - lo) / span
	}
	return (s/2 - lo/2) / (hi/2 - lo/2)
}

func (a *Accumulator) Table() Table {
	return a.table.clone()
}

func (a *Accumulator) Width() int {
	return a.table.Width
}

func (a *Accumulator) Len() int {
	return len(a.table.Phrases)
}

func (a *Accumulator) Modes() []style.Mode {
	return append([]style.Mode(nil), a.modes...)
}

func (a *Accumulator) Bin(word string) (int, bool) {
	id, ok := a.lookup[word]
	return id, ok
}

func (a *Accumulator) Lookup() map[string]int {
	out := make(map[string]int, len(a.lookup))
	for k, v := range a.lookup {
		out[k] = v
	}
	return out
}

// Rows resolves every cell's style. Bins come from the word lookup, so a
// word repeated across phrases shows the bin of its last occurrence.
func (a *Accumulator) Rows(m *style.Mapper) ([]Row, error) {
	rows := make([]Row, 0, len(a.table.Phrases))
	for i, p := range a.table.Phrases {
		mode := a.modes[i]
		row := Row{Mode: mode, Cells: make([]Cell, len(p))}
		for j, ws := range p {
			bin := a.lookup[ws.Word]
			desc, err := m.StyleFor(bin, mode)
			if err != nil {
				return nil, fmt.Errorf("phrase %d word %d (%q): %w", i, j, ws.Word, err)
			}
			row.Cells[j] = Cell{Word: ws.Word, Score: ws.Score, Bin: bin, Style: desc}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
