package style

import (
	"errors"
	"fmt"
	"strings"

	"github.com/solardome/attrviz/internal/colormap"
)

type Mode string

const (
	FontSize  Mode = "font_size"
	FontColor Mode = "font_color"
)

var (
	ErrUnknownMode   = errors.New("unrecognized style mode")
	ErrInvalidLookup = errors.New("invalid style lookup")
)

func (m Mode) Valid() bool {
	switch m {
	case FontSize, FontColor:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode accepts the canonical names case-insensitively, with '-' or '_'.
func ParseMode(s string) (Mode, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	m := Mode(norm)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// IndexError reports a bin id outside the configured lookup tables.
type IndexError struct {
	Bin  int
	Size int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("bin %d outside style lookup of size %d", e.Bin, e.Size)
}

type Lookup struct {
	FontSizes      []int     `json:"font_sizes"`
	ColorPositions []float64 `json:"color_positions"`
	// Bins below DarkenBelow get a darker cell background. Zero disables it.
	DarkenBelow int `json:"darken_below"`
}

func DefaultLookup() Lookup {
	return Lookup{
		FontSizes:      []int{100, 250, 400, 600, 1300},
		ColorPositions: []float64{0.4, 0.5, 0.6, 0.7, 1.0},
		DarkenBelow:    3,
	}
}

type Descriptor struct {
	Mode             Mode         `json:"mode"`
	FontSizePercent  int          `json:"font_size_percent,omitempty"`
	Color            colormap.RGB `json:"color"`
	DarkenBackground bool         `json:"darken_background"`
}

type Mapper struct {
	numBins int
	lookup  Lookup
	cmap    colormap.Sampler
}

func NewMapper(numBins int, lookup Lookup, cmap colormap.Sampler) (*Mapper, error) {
	if numBins < 1 {
		return nil, fmt.Errorf("%w: bin count %d", ErrInvalidLookup, numBins)
	}
	if len(lookup.FontSizes) != numBins {
		return nil, fmt.Errorf("%w: %d font sizes for %d bins", ErrInvalidLookup, len(lookup.FontSizes), numBins)
	}
	if len(lookup.ColorPositions) != numBins {
		return nil, fmt.Errorf("%w: %d color positions for %d bins", ErrInvalidLookup, len(lookup.ColorPositions), numBins)
	}
	for i, p := range lookup.ColorPositions {
		if !(p >= 0 && p <= 1) {
			return nil, fmt.Errorf("%w: color position %d = %g outside [0, 1]", ErrInvalidLookup, i, p)
		}
	}
	for i, s := range lookup.FontSizes {
		if s <= 0 {
			return nil, fmt.Errorf("%w: font size %d = %d must be positive", ErrInvalidLookup, i, s)
		}
	}
	if cmap == nil {
		return nil, fmt.Errorf("%w: no colormap", ErrInvalidLookup)
	}
	l := Lookup{
		FontSizes:      append([]int(nil), lookup.FontSizes...),
		ColorPositions: append([]float64(nil), lookup.ColorPositions...),
		DarkenBelow:    lookup.DarkenBelow,
	}
	return &Mapper{numBins: numBins, lookup: l, cmap: cmap}, nil
}

func (m *Mapper) NumBins() int {
	return m.numBins
}

func (m *Mapper) StyleFor(bin int, mode Mode) (Descriptor, error) {
	if bin < 0 || bin >= m.numBins {
		return Descriptor{}, &IndexError{Bin: bin, Size: m.numBins}
	}
	switch mode {
	case FontSize:
		return Descriptor{Mode: FontSize, FontSizePercent: m.lookup.FontSizes[bin]}, nil
	case FontColor:
		return Descriptor{
			Mode:             FontColor,
			Color:            m.cmap.Sample(m.lookup.ColorPositions[bin]),
			DarkenBackground: bin < m.lookup.DarkenBelow,
		}, nil
	default:
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownMode, string(mode))
	}
}
