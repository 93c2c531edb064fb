package pairs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/solardome/attrviz/internal/table"
)

// Parse reads either a single phrase, [["w", s], ...], or a list of
// phrases, [[["w", s], ...], ...]. Scores may be JSON numbers or numeric
// strings; words may be strings or numbers.
func Parse(payload []byte) ([][]table.WordScore, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, fmt.Errorf("parse pairs json: %w", err)
	}
	if len(root) == 0 {
		return nil, nil
	}
	if isPair(root[0]) {
		phrase, err := parsePhrase(root)
		if err != nil {
			return nil, err
		}
		return [][]table.WordScore{phrase}, nil
	}

	out := make([][]table.WordScore, 0, len(root))
	for i, raw := range root {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("phrase %d: expected an array of pairs: %w", i, err)
		}
		phrase, err := parsePhrase(items)
		if err != nil {
			return nil, fmt.Errorf("phrase %d: %w", i, err)
		}
		out = append(out, phrase)
	}
	return out, nil
}

// isPair reports whether raw is a two element array whose first element is
// not itself an array.
func isPair(raw json.RawMessage) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) != 2 {
		return false
	}
	first := bytes.TrimSpace(items[0])
	return len(first) > 0 && first[0] != '['
}

func parsePhrase(items []json.RawMessage) ([]table.WordScore, error) {
	out := make([]table.WordScore, 0, len(items))
	for i, raw := range items {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return nil, fmt.Errorf("pair %d: expected [word, score]", i)
		}
		word, err := parseWord(pair[0])
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		score, err := parseScore(pair[1])
		if err != nil {
			return nil, fmt.Errorf("pair %d (%q): %w", i, word, err)
		}
		out = append(out, table.WordScore{Word: word, Score: score})
	}
	return out, nil
}

func parseWord(raw json.RawMessage) (string, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return "", err
	}
	switch w := v.(type) {
	case string:
		return w, nil
	case json.Number:
		return w.String(), nil
	default:
		return "", fmt.Errorf("word must be a string or number, got %s", string(raw))
	}
}

func parseScore(raw json.RawMessage) (float64, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return 0, err
	}
	var text string
	switch s := v.(type) {
	case json.Number:
		text = s.String()
	case string:
		text = strings.TrimSpace(s)
	default:
		return 0, fmt.Errorf("score must be a number or numeric string, got %s", string(raw))
	}
	score, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q", text)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("score %q is not finite", text)
	}
	return score, nil
}

func decodeScalar(raw json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.New("unexpected null")
	}
	return v, nil
}
