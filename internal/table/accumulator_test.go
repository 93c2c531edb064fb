package table

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/solardome/attrviz/internal/binning"
	"github.com/solardome/attrviz/internal/colormap"
	"github.com/solardome/attrviz/internal/style"
)

func newAccumulator(t *testing.T, opts Options) *Accumulator {
	t.Helper()
	a, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func newMapper(t *testing.T) *style.Mapper {
	t.Helper()
	cm, err := colormap.Named(colormap.DefaultName)
	if err != nil {
		t.Fatal(err)
	}
	m, err := style.NewMapper(DefaultNumBins, style.DefaultLookup(), cm)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func ws(pairs ...interface{}) []WordScore {
	return []WordScore(phraseOf(pairs...))
}

func fontSizes(t *testing.T, rows []Row) [][]int {
	t.Helper()
	out := make([][]int, len(rows))
	for i, r := range rows {
		for _, c := range r.Cells {
			out[i] = append(out[i], c.Style.FontSizePercent)
		}
	}
	return out
}

func TestAppendSinglePhraseFontSizes(t *testing.T) {
	a := newAccumulator(t, Options{})
	if err := a.Append(ws("foo", -10345, "<s>", -3, "bar", 6), style.FontSize); err != nil {
		t.Fatal(err)
	}
	rows, err := a.Rows(newMapper(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := fontSizes(t, rows); !reflect.DeepEqual(got, [][]int{{100, 400, 1300}}) {
		t.Fatalf("font sizes = %v", got)
	}
	if rows[0].Cells[1].Word != "&lts>" {
		t.Fatalf("expected canonical word, got %q", rows[0].Cells[1].Word)
	}
	if _, ok := a.Bin("<s>"); ok {
		t.Fatalf("lookup must be keyed by canonical text")
	}
}

func TestAppendBinsEachPhraseOnItsOwnScores(t *testing.T) {
	a := newAccumulator(t, Options{})
	if err := a.Append(ws("foo", -10345, "<s>", -3, "bar", 6), style.FontSize); err != nil {
		t.Fatal(err)
	}
	if err := a.Append(ws("bluebell", -5, "is", 6, "pretty", 140, "grand", 10), style.FontSize); err != nil {
		t.Fatal(err)
	}
	if a.Width() != 4 || a.Len() != 2 {
		t.Fatalf("unexpected shape width=%d len=%d", a.Width(), a.Len())
	}
	want := map[string]int{"foo": 0, "&lts>": 1, "bar": 4, "": 3, "bluebell": 0, "is": 1, "pretty": 4, "grand": 3}
	if got := a.Lookup(); !reflect.DeepEqual(got, want) {
		t.Fatalf("lookup = %v, want %v", got, want)
	}
	tbl := a.Table()
	if tbl.Phrases[0][3] != Placeholder {
		t.Fatalf("padding cell = %+v", tbl.Phrases[0][3])
	}
}

func TestAppendPooledScopeMatchesReferenceTable(t *testing.T) {
	a := newAccumulator(t, Options{Scope: ScopePooled})
	if err := a.Append(ws("foo", -10345, "<s>", -3, "bar", 6), style.FontSize); err != nil {
		t.Fatal(err)
	}
	if err := a.Append(ws("bluebell", -5, "is", 6, "pretty", 140), style.FontSize); err != nil {
		t.Fatal(err)
	}
	rows, err := a.Rows(newMapper(t))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{100, 400, 600}, {250, 600, 1300}}
	if got := fontSizes(t, rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("font sizes = %v, want %v", got, want)
	}
}

func TestAppendPooledScopeAssignsBinsInWordOrder(t *testing.T) {
	a := newAccumulator(t, Options{Scope: ScopePooled})
	err := a.AppendAll([][]WordScore{
		ws("foo", -10345, "<s>", -3, "bar", 6),
		ws("bluebell", -5, "is", 6, "pretty", 140, "grand", 10),
	}, style.FontSize)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"foo": 0, "&lts>": 1, "bar": 3, "": 2, "bluebell": 0, "is": 3, "pretty": 4, "grand": 4}
	if got := a.Lookup(); !reflect.DeepEqual(got, want) {
		t.Fatalf("lookup = %v, want %v", got, want)
	}
}

func TestAppendSameWidthLeavesExistingCells(t *testing.T) {
	a := newAccumulator(t, Options{})
	if err := a.Append(ws("a", 1, "b", 2, "c", 3), style.FontSize); err != nil {
		t.Fatal(err)
	}
	before := a.Table()
	if err := a.Append(ws("d", 4, "e", 5, "f", 6), style.FontColor); err != nil {
		t.Fatal(err)
	}
	after := a.Table()
	if after.Width != 3 {
		t.Fatalf("width changed to %d", after.Width)
	}
	if !reflect.DeepEqual(after.Phrases[0], before.Phrases[0]) {
		t.Fatalf("existing phrase changed: %+v", after.Phrases[0])
	}
}

func TestAppendNarrowPhraseIsPadded(t *testing.T) {
	a := newAccumulator(t, Options{})
	if err := a.Append(ws("a", 1, "b", 2, "c", 3, "d", 4), style.FontSize); err != nil {
		t.Fatal(err)
	}
	if err := a.Append(ws("Gray", -10, "ocean", 30), style.FontSize); err != nil {
		t.Fatal(err)
	}
	tbl := a.Table()
	for i, p := range tbl.Phrases {
		if len(p) != 4 {
			t.Fatalf("phrase %d has width %d", i, len(p))
		}
	}
	if tbl.Phrases[1][2] != Placeholder || tbl.Phrases[1][3] != Placeholder {
		t.Fatalf("narrow phrase not padded: %+v", tbl.Phrases[1])
	}
}

func TestAppendKeepsPerPhraseStyleModes(t *testing.T) {
	a := newAccumulator(t, Options{})
	steps := []style.Mode{style.FontColor, style.FontSize, style.FontColor}
	for _, mode := range steps {
		if err := a.Append(ws("My", -12345, "Bonny", -100, "lies", 0, "over", 100, "the", 500, "ocean", 10000), mode); err != nil {
			t.Fatal(err)
		}
	}
	if got := a.Modes(); !reflect.DeepEqual(got, steps) {
		t.Fatalf("modes = %v", got)
	}
	rows, err := a.Rows(newMapper(t))
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range rows {
		if r.Mode != steps[i] {
			t.Fatalf("row %d mode = %s", i, r.Mode)
		}
		for _, c := range r.Cells {
			if c.Style.Mode != steps[i] {
				t.Fatalf("row %d cell %q styled as %s", i, c.Word, c.Style.Mode)
			}
		}
	}
	first := rows[0].Cells
	if !first[0].Style.DarkenBackground || first[5].Style.DarkenBackground {
		t.Fatalf("expected darkening on low bins only: %+v / %+v", first[0].Style, first[5].Style)
	}
}

func TestRepeatedWordTakesBinOfLastPhrase(t *testing.T) {
	a := newAccumulator(t, Options{})
	if err := a.Append(ws("the", 1, "cat", 5, "sat", 3), style.FontSize); err != nil {
		t.Fatal(err)
	}
	if bin, _ := a.Bin("the"); bin != 0 {
		t.Fatalf("expected bin 0 before collision, got %d", bin)
	}
	if err := a.Append(ws("the", 10, "dog", 1, "ran", 5), style.FontSize); err != nil {
		t.Fatal(err)
	}
	rows, err := a.Rows(newMapper(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := rows[0].Cells[0].Bin; got != 4 {
		t.Fatalf("first phrase's %q should alias to the later bin, got %d", "the", got)
	}
	if got := rows[0].Cells[0].Score; got != 1 {
		t.Fatalf("raw score must be kept, got %v", got)
	}
}

func TestAppendRejectsUnknownModeWithoutMutation(t *testing.T) {
	a := newAccumulator(t, Options{})
	if err := a.Append(ws("a", 1), style.Mode("underline")); !errors.Is(err, style.ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
	if a.Len() != 0 || a.Width() != 0 {
		t.Fatalf("table mutated on error")
	}
}

func TestAppendRejectsNonFiniteScores(t *testing.T) {
	a := newAccumulator(t, Options{})
	err := a.AppendAll([][]WordScore{
		ws("ok", 1),
		{{Word: "bad", Score: math.Inf(1)}},
	}, style.FontSize)
	if !errors.Is(err, ErrNonFiniteScore) {
		t.Fatalf("expected ErrNonFiniteScore, got %v", err)
	}
	if a.Len() != 0 {
		t.Fatalf("no phrase should be appended when any score is invalid")
	}
}

func TestAppendEmptyPhrase(t *testing.T) {
	a := newAccumulator(t, Options{})
	if err := a.Append(nil, style.FontSize); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 1 || a.Width() != 0 || len(a.Lookup()) != 0 {
		t.Fatalf("unexpected state len=%d width=%d", a.Len(), a.Width())
	}
	if err := a.Append(ws("x", 2, "y", 3), style.FontSize); err != nil {
		t.Fatal(err)
	}
	if tbl := a.Table(); len(tbl.Phrases[0]) != 2 {
		t.Fatalf("empty phrase should be widened, got %+v", tbl.Phrases[0])
	}
}

func TestLinearMethod(t *testing.T) {
	a := newAccumulator(t, Options{Method: MethodLinear})
	if err := a.Append(ws("lo", 0, "mid", 50, "hi", 100, "q", 25), style.FontSize); err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"lo": 0, "mid": 2, "hi": 4, "q": 1}
	if got := a.Lookup(); !reflect.DeepEqual(got, want) {
		t.Fatalf("lookup = %v, want %v", got, want)
	}

	flat := newAccumulator(t, Options{Method: MethodLinear})
	if err := flat.Append(ws("a", 7, "b", 7), style.FontSize); err != nil {
		t.Fatal(err)
	}
	if bin, _ := flat.Bin("b"); bin != 0 {
		t.Fatalf("constant phrase should bin to 0, got %d", bin)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	for _, opts := range []Options{
		{NumBins: -1},
		{Method: "kmeans"},
		{Scope: "document"},
	} {
		if _, err := New(opts); !errors.Is(err, ErrInvalidOptions) {
			t.Fatalf("New(%+v): expected ErrInvalidOptions, got %v", opts, err)
		}
	}
}

func TestRowsFailFastOnLookupSizeMismatch(t *testing.T) {
	a := newAccumulator(t, Options{NumBins: 6})
	if err := a.Append(ws("a", 1, "b", 2, "c", 3, "d", 4, "e", 5, "f", 6), style.FontSize); err != nil {
		t.Fatal(err)
	}
	var idxErr *style.IndexError
	if _, err := a.Rows(newMapper(t)); !errors.As(err, &idxErr) {
		t.Fatalf("expected IndexError, got %v", err)
	}
}

func TestLinearMethodHandlesFullFloatRange(t *testing.T) {
	a := newAccumulator(t, Options{Method: MethodLinear})
	if err := a.Append(ws("a", -1e308, "mid", 0, "b", 1e308), style.FontSize); err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"a": 0, "mid": 2, "b": 4}
	if got := a.Lookup(); !reflect.DeepEqual(got, want) {
		t.Fatalf("lookup = %v, want %v", got, want)
	}
}

func TestAppendLeavesStateUntouchedWhenBinningFails(t *testing.T) {
	a := newAccumulator(t, Options{})
	if err := a.Append(ws("foo", -10345, "<s>", -3, "bar", 6), style.FontSize); err != nil {
		t.Fatal(err)
	}
	before := a.Lookup()

	// No quantile fractions can be derived from zero bins.
	a.opts.NumBins = 0
	if err := a.Append(ws("bluebell", -5, "is", 6, "pretty", 140, "grand", 10), style.FontColor); !errors.Is(err, binning.ErrInvalidBins) {
		t.Fatalf("expected ErrInvalidBins, got %v", err)
	}
	if a.Len() != 1 || a.Width() != 3 || len(a.Modes()) != 1 {
		t.Fatalf("table mutated on error: len=%d width=%d modes=%v", a.Len(), a.Width(), a.Modes())
	}
	if got := a.Lookup(); !reflect.DeepEqual(got, before) {
		t.Fatalf("lookup mutated on error: %v, want %v", got, before)
	}
	if tbl := a.Table(); len(tbl.Phrases[0]) != 3 {
		t.Fatalf("existing phrase widened on error: %+v", tbl.Phrases[0])
	}
}
