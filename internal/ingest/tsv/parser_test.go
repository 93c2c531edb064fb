package tsv

import (
	"reflect"
	"strings"
	"testing"

	"github.com/solardome/attrviz/internal/table"
)

func TestParsePhrasesSeparatedByBlankLines(t *testing.T) {
	payload := "# first phrase\nfoo\t-10345\n<s>\t-3\r\nbar\t6\n\n\n  \nbluebell\t-5\nis\t 6\n"
	got, err := Parse([]byte(payload))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]table.WordScore{
		{{Word: "foo", Score: -10345}, {Word: "<s>", Score: -3}, {Word: "bar", Score: 6}},
		{{Word: "bluebell", Score: -5}, {Word: "is", Score: 6}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseEmptyPayload(t *testing.T) {
	got, err := Parse([]byte("# nothing here\n\n"))
	if err != nil || len(got) != 0 {
		t.Fatalf("Parse() = %+v, %v", got, err)
	}
}

func TestParseErrorsCarryLineNumbers(t *testing.T) {
	cases := map[string]struct {
		payload string
		want    string
	}{
		"missing_tab": {"foo\t1\nbar 2\n", "line 2: expected word<TAB>score"},
		"bad_score":   {"foo\tlots\n", `line 1: invalid score "lots"`},
		"infinite":    {"\nfoo\t+Inf\n", `line 2: score "+Inf" is not finite`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.payload))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseHashtagWordsAreNotComments(t *testing.T) {
	got, err := Parse([]byte("# tweet 1\nlove\t0.5\n#blessed\t2.5\nday\t1\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]table.WordScore{{{Word: "love", Score: 0.5}, {Word: "#blessed", Score: 2.5}, {Word: "day", Score: 1}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseKeepsWordBytes(t *testing.T) {
	got, err := Parse([]byte(" padded \t1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0][0].Word != " padded " {
		t.Fatalf("Parse() = %+v", got)
	}
}
