package colormap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// lutSize matches the resolution of matplotlib's named colormaps.
const lutSize = 256

var ErrUnknownColormap = errors.New("unknown colormap")

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c RGB) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Sampler turns a position in [0, 1] into a color. Implementations must be
// deterministic and continuous.
type Sampler interface {
	Sample(pos float64) RGB
}

// Segmented is a colormap built from evenly spaced anchor colors and
// quantized into a fixed lookup table.
type Segmented struct {
	name string
	lut  []colorful.Color
}

func NewSegmented(name string, anchors []string) (*Segmented, error) {
	if len(anchors) < 2 {
		return nil, fmt.Errorf("colormap %s: need at least two anchors, got %d", name, len(anchors))
	}
	colors := make([]colorful.Color, len(anchors))
	for i, a := range anchors {
		c, err := colorful.Hex(a)
		if err != nil {
			return nil, fmt.Errorf("colormap %s: anchor %d: %w", name, i, err)
		}
		colors[i] = c
	}
	segments := float64(len(colors) - 1)
	lut := make([]colorful.Color, lutSize)
	for i := range lut {
		x := float64(i) / float64(lutSize-1) * segments
		j := int(math.Floor(x))
		if j >= len(colors)-1 {
			lut[i] = colors[len(colors)-1]
			continue
		}
		lut[i] = colors[j].BlendRgb(colors[j+1], x-float64(j))
	}
	return &Segmented{name: name, lut: lut}, nil
}

func (s *Segmented) Name() string {
	return s.name
}

func (s *Segmented) Sample(pos float64) RGB {
	idx := 0
	switch {
	case math.IsNaN(pos), pos <= 0:
		idx = 0
	case pos >= 1:
		idx = lutSize - 1
	default:
		idx = int(pos * lutSize)
		if idx > lutSize-1 {
			idx = lutSize - 1
		}
	}
	c := s.lut[idx].Clamped()
	return RGB{R: channel(c.R), G: channel(c.G), B: channel(c.B)}
}

// channel scales a [0, 1] component to 0..255, truncating like an integer
// cast of v*255.
func channel(v float64) uint8 {
	return uint8(v * 255)
}

var builtin = map[string][]string{
	"YlGn":   {"#ffffe5", "#f7fcb9", "#d9f0a3", "#addd8e", "#78c679", "#41ab5d", "#238443", "#006837", "#004529"},
	"PiYG":   {"#8e0152", "#c51b7d", "#de77ae", "#f1b6da", "#fde0ef", "#f7f7f7", "#e6f5d0", "#b8e186", "#7fbc41", "#4d9221", "#276419"},
	"RdYlGn": {"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee08b", "#ffffbf", "#d9ef8b", "#a6d96a", "#66bd63", "#1a9850", "#006837"},
}

const DefaultName = "YlGn"

func Named(name string) (*Segmented, error) {
	anchors, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownColormap, name, Names())
	}
	return NewSegmented(name, anchors)
}

func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
