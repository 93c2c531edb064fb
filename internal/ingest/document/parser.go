package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/solardome/attrviz/internal/table"
)

// Document is the self-describing input format. A phrase's style, when set,
// overrides the document style.
type Document struct {
	Style   string   `json:"style,omitempty" jsonschema_description:"Default style for every phrase: font_size or font_color."`
	Phrases []Phrase `json:"phrases" jsonschema:"required"`
}

type Phrase struct {
	Style string `json:"style,omitempty" jsonschema_description:"Style for this phrase only: font_size or font_color."`
	Words []Word `json:"words" jsonschema:"required"`
}

type Word struct {
	Word  string  `json:"word" jsonschema:"required"`
	Score float64 `json:"score" jsonschema:"required"`
}

// Parsed is one phrase with its effective style; Style is empty when neither
// the phrase nor the document names one.
type Parsed struct {
	Style string
	Words []table.WordScore
}

func Parse(payload []byte) ([]Parsed, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse document json: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("parse document json: trailing data after document")
	}
	if doc.Phrases == nil {
		return nil, errors.New("document: missing required key phrases")
	}

	out := make([]Parsed, 0, len(doc.Phrases))
	for i, p := range doc.Phrases {
		styleName := doc.Style
		if p.Style != "" {
			styleName = p.Style
		}
		words := make([]table.WordScore, 0, len(p.Words))
		for j, w := range p.Words {
			if math.IsNaN(w.Score) || math.IsInf(w.Score, 0) {
				return nil, fmt.Errorf("phrase %d word %d (%q): score is not finite", i, j, w.Word)
			}
			words = append(words, table.WordScore{Word: w.Word, Score: w.Score})
		}
		out = append(out, Parsed{Style: styleName, Words: words})
	}
	return out, nil
}
