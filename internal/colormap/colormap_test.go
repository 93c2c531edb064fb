package colormap

import (
	"errors"
	"math"
	"testing"
)

func TestNamedYlGnEndpoints(t *testing.T) {
	cm, err := Named("YlGn")
	if err != nil {
		t.Fatal(err)
	}
	if got := cm.Sample(0); got != (RGB{R: 255, G: 255, B: 229}) {
		t.Fatalf("Sample(0) = %+v", got)
	}
	if got := cm.Sample(1); got != (RGB{R: 0, G: 69, B: 41}) {
		t.Fatalf("Sample(1) = %+v", got)
	}
	if got := cm.Sample(1).Hex(); got != "#004529" {
		t.Fatalf("Hex() = %s", got)
	}
}

func TestSampleClampsOutOfRangePositions(t *testing.T) {
	cm, err := Named("PiYG")
	if err != nil {
		t.Fatal(err)
	}
	if cm.Sample(-3) != cm.Sample(0) {
		t.Fatalf("negative positions should clamp to the first color")
	}
	if cm.Sample(7) != cm.Sample(1) {
		t.Fatalf("positions above one should clamp to the last color")
	}
	if cm.Sample(math.NaN()) != cm.Sample(0) {
		t.Fatalf("NaN should sample the first color")
	}
}

func TestSampleIsDeterministicAndGetsDarkerAlongYlGn(t *testing.T) {
	a, _ := Named("YlGn")
	b, _ := Named("YlGn")
	prevLum := 256 * 3
	for _, pos := range []float64{0.4, 0.5, 0.6, 0.7, 1.0} {
		if a.Sample(pos) != b.Sample(pos) {
			t.Fatalf("Sample(%v) not deterministic", pos)
		}
		c := a.Sample(pos)
		lum := int(c.R) + int(c.G) + int(c.B)
		if lum >= prevLum {
			t.Fatalf("expected YlGn to darken at %v, got %+v", pos, c)
		}
		prevLum = lum
	}
}

func TestRGBCSS(t *testing.T) {
	if got := (RGB{R: 1, G: 22, B: 255}).CSS(); got != "rgb(1, 22, 255)" {
		t.Fatalf("CSS() = %s", got)
	}
}

func TestNamedUnknown(t *testing.T) {
	if _, err := Named("Jet"); !errors.Is(err, ErrUnknownColormap) {
		t.Fatalf("expected ErrUnknownColormap, got %v", err)
	}
	if len(Names()) != 3 {
		t.Fatalf("unexpected builtin names %v", Names())
	}
}

func TestNewSegmentedRejectsBadAnchors(t *testing.T) {
	if _, err := NewSegmented("x", []string{"#ffffff"}); err == nil {
		t.Fatal("expected error for a single anchor")
	}
	if _, err := NewSegmented("x", []string{"#ffffff", "nope"}); err == nil {
		t.Fatal("expected error for an unparsable anchor")
	}
}

func TestSampleTruncatesChannels(t *testing.T) {
	cm, err := Named("YlGn")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		pos  float64
		want RGB
	}{
		{0.5, RGB{R: 119, G: 197, B: 120}},
		{0.7, RGB{R: 46, G: 146, B: 76}},
	}
	for _, tc := range cases {
		if got := cm.Sample(tc.pos); got != tc.want {
			t.Fatalf("Sample(%v) = %+v, want %+v", tc.pos, got, tc.want)
		}
	}
}
