package tsv

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/solardome/attrviz/internal/table"
)

const maxLineBytes = 1 << 20

// Parse reads one "word<TAB>score" pair per line. A blank line ends the
// current phrase. A line starting with '#' and holding no tab is a comment;
// "#tag<TAB>score" is an ordinary word.
func Parse(payload []byte) ([][]table.WordScore, error) {
	sc := bufio.NewScanner(bytes.NewReader(payload))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		out     [][]table.WordScore
		current []table.WordScore
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, current)
			current = nil
		}
	}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if strings.HasPrefix(trimmed, "#") && !strings.Contains(line, "\t") {
			continue
		}
		word, rawScore, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: expected word<TAB>score", lineNo)
		}
		rawScore = strings.TrimSpace(rawScore)
		score, err := strconv.ParseFloat(rawScore, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid score %q", lineNo, rawScore)
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, fmt.Errorf("line %d: score %q is not finite", lineNo, rawScore)
		}
		current = append(current, table.WordScore{Word: word, Score: score})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tsv: %w", err)
	}
	flush()
	return out, nil
}
