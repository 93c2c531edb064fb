package attrviz

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/solardome/attrviz/internal/report"
)

// stableRunID hashes the inputs in order together with the effective
// settings; row order depends on input order, so it is part of the id.
func stableRunID(inputs []InputDigest, settings Settings) string {
	parts := make([]string, 0, len(inputs)+1)
	for i, in := range inputs {
		parts = append(parts, fmt.Sprintf("%03d:%s:%s:%s", i, in.Kind, in.Path, in.SHA256))
	}
	fingerprint, err := json.Marshal(settings)
	if err != nil {
		fingerprint = []byte(fmt.Sprintf("%+v", settings))
	}
	parts = append(parts, "settings:"+report.SHA256Hex(fingerprint))
	return report.SHA256Hex([]byte(strings.Join(parts, "|")))
}
