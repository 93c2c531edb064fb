package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/invopop/jsonschema"
	"golang.org/x/text/unicode/norm"

	"github.com/solardome/attrviz/internal/ingest/document"
	"github.com/solardome/attrviz/internal/ingest/pairs"
	"github.com/solardome/attrviz/internal/ingest/tsv"
	"github.com/solardome/attrviz/internal/table"
)

type Format string

const (
	FormatPairs    Format = "pairs"
	FormatDocument Format = "document"
	FormatTSV      Format = "tsv"
)

var ErrUnsupportedFormat = errors.New("unsupported input format")

type Options struct {
	// NormalizeNFC rewrites every word to Unicode normal form C so that
	// differently composed spellings share one lookup entry.
	NormalizeNFC bool
}

// Phrase is one parsed phrase. Style is the raw style name carried by the
// input, empty when the input does not name one.
type Phrase struct {
	Style string
	Words []table.WordScore
}

// Detect picks the format from the first non-space byte: '[' is pairs, '{'
// is a document and anything else is tab separated text.
func Detect(payload []byte) (Format, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
	}
	switch trimmed[0] {
	case '[':
		return FormatPairs, nil
	case '{':
		return FormatDocument, nil
	}
	if !utf8.Valid(trimmed) {
		return "", fmt.Errorf("%w: input is neither JSON nor UTF-8 text", ErrUnsupportedFormat)
	}
	return FormatTSV, nil
}

func Parse(payload []byte, opts Options) (Format, []Phrase, error) {
	format, err := Detect(payload)
	if err != nil {
		return "", nil, err
	}
	var phrases []Phrase
	switch format {
	case FormatPairs:
		parsed, err := pairs.Parse(payload)
		if err != nil {
			return format, nil, err
		}
		phrases = fromWordLists(parsed)
	case FormatTSV:
		parsed, err := tsv.Parse(payload)
		if err != nil {
			return format, nil, err
		}
		phrases = fromWordLists(parsed)
	case FormatDocument:
		parsed, err := document.Parse(payload)
		if err != nil {
			return format, nil, err
		}
		phrases = make([]Phrase, 0, len(parsed))
		for _, p := range parsed {
			phrases = append(phrases, Phrase{Style: p.Style, Words: p.Words})
		}
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if opts.NormalizeNFC {
		for _, p := range phrases {
			for i := range p.Words {
				p.Words[i].Word = norm.NFC.String(p.Words[i].Word)
			}
		}
	}
	return format, phrases, nil
}

func fromWordLists(lists [][]table.WordScore) []Phrase {
	out := make([]Phrase, 0, len(lists))
	for _, words := range lists {
		out = append(out, Phrase{Words: words})
	}
	return out
}

// Schema returns the JSON schema of the document input format.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&document.Document{})
	schema.Title = "attrviz phrase document"
	return json.MarshalIndent(schema, "", "  ")
}
