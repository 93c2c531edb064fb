package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	DefaultHTMLName      = "attrviz.html"
	DefaultChecksumsName = "checksums.sha256"
	DefaultRunLogName    = "attrviz.run.log"
)

// Checksum is one line of a checksums file.
type Checksum struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

func DefaultChecksumsPath(outHTMLPath string) string {
	return siblingOf(outHTMLPath, DefaultChecksumsName)
}

func DefaultRunLogPath(outHTMLPath string) string {
	return siblingOf(outHTMLPath, DefaultRunLogName)
}

func siblingOf(path, name string) string {
	if strings.TrimSpace(path) == "" {
		path = DefaultHTMLName
	}
	return filepath.Join(filepath.Dir(path), name)
}

// WriteChecksums hashes every artifact and writes "sum  basename" lines,
// sorted by path, in the format sha256sum -c accepts.
func WriteChecksums(checksumsPath string, artifactPaths []string) ([]Checksum, error) {
	clean := make([]string, 0, len(artifactPaths))
	for _, p := range artifactPaths {
		if strings.TrimSpace(p) != "" {
			clean = append(clean, p)
		}
	}
	sort.Strings(clean)

	sums := make([]Checksum, 0, len(clean))
	var b strings.Builder
	for _, p := range clean {
		sum, err := FileSHA256(p)
		if err != nil {
			return nil, fmt.Errorf("checksum read failed for %s: %w", p, err)
		}
		sums = append(sums, Checksum{Path: p, SHA256: sum})
		fmt.Fprintf(&b, "%s  %s\n", sum, filepath.Base(p))
	}
	if err := WriteFileAtomic(checksumsPath, []byte(b.String())); err != nil {
		return nil, err
	}
	return sums, nil
}

func FileSHA256(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return SHA256Hex(b), nil
}

func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
