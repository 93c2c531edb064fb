package binning

import (
	"errors"
	"fmt"
	"math"
)

// lastBinSlack widens the final bin so that the top of the output range
// still satisfies the half-open "< high" test.
const lastBinSlack = 0.0001

var ErrInvalidBins = errors.New("invalid bin configuration")

// RangeError reports a value outside the binner's declared input domain.
type RangeError struct {
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %g not in [%g, %g]", e.Value, e.Min, e.Max)
}

type Bin struct {
	Low  float64
	High float64
}

func (b Bin) Contains(v float64) bool {
	return v >= b.Low && v < b.High
}

// Binner maps values from an input range onto n equal-width bins that tile
// an output range.
type Binner struct {
	inMin, inMax   float64
	outMin, outMax float64
	bins           []Bin
}

func NewBinner(inMin, inMax, outMin, outMax float64, n int) (*Binner, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: bin count %d", ErrInvalidBins, n)
	}
	for _, v := range []float64{inMin, inMax, outMin, outMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite range bound %g", ErrInvalidBins, v)
		}
	}
	if !(inMax > inMin) {
		return nil, fmt.Errorf("%w: empty input range [%g, %g]", ErrInvalidBins, inMin, inMax)
	}
	if !(outMax > outMin) {
		return nil, fmt.Errorf("%w: empty output range [%g, %g]", ErrInvalidBins, outMin, outMax)
	}
	b := &Binner{inMin: inMin, inMax: inMax, outMin: outMin, outMax: outMax}
	b.bins = makeBins(outMin, outMax, n)
	return b, nil
}

func makeBins(low, high float64, n int) []Bin {
	width := (high - low) / float64(n)
	bins := make([]Bin, n)
	lo := low
	for i := range bins {
		hi := low + float64(i+1)*width
		bins[i] = Bin{Low: lo, High: hi}
		lo = hi
	}
	bins[n-1].High = high + lastBinSlack
	return bins
}

func (b *Binner) Bins() []Bin {
	return append([]Bin(nil), b.bins...)
}

// MapRange returns v unchanged when it already lies in [outMin, outMax).
// Otherwise v is rescaled linearly from the input range.
func (b *Binner) MapRange(v float64) (float64, error) {
	if v >= b.outMin && v < b.outMax {
		return v, nil
	}
	if v < b.inMin || v > b.inMax || math.IsNaN(v) {
		return 0, &RangeError{Value: v, Min: b.inMin, Max: b.inMax}
	}
	return b.outMin + ((v-b.inMin)/(b.inMax-b.inMin))*(b.outMax-b.outMin), nil
}

// SelectBin returns the index of the bin holding the mapped value, or -1
// when no bin contains it.
func (b *Binner) SelectBin(v float64) (int, error) {
	mapped, err := b.MapRange(v)
	if err != nil {
		return -1, err
	}
	for i, bin := range b.bins {
		if bin.Contains(mapped) {
			return i, nil
		}
	}
	return -1, nil
}
