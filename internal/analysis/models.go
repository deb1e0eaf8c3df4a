package analysis

import (
	"fmt"
	"math"

	"github.com/user/lotuslake_go/internal/parser"
)

// Range is a fractional window over the samples of a signal, [From, To).
type Range struct {
	From float64
	To   float64
}

// DefaultRange keeps the last fifth of a signal, where the flow has settled.
var DefaultRange = Range{From: 0.8, To: 1}

// Validate checks 0 <= From < To <= 1.
func (r Range) Validate() error {
	if math.IsNaN(r.From) || math.IsNaN(r.To) || r.From < 0 || r.To > 1 || r.From >= r.To {
		return fmt.Errorf("invalid signal range (%g, %g)", r.From, r.To)
	}
	return nil
}

// Bounds returns the sample indices covered by the range for n samples.
func (r Range) Bounds(n int) (start, end int) {
	return int(math.Floor(float64(n) * r.From)), int(math.Floor(float64(n) * r.To))
}

// SignalStats summarises a signal over a sample window.
type SignalStats struct {
	Column  string
	Range   Range
	Samples int
	Mean    float64
	MAD     float64 // mean absolute deviation about Mean
	Std     float64 // sample standard deviation
	RMS     float64
	Min     float64
	Max     float64
}

// Stat names accepted by SignalStats.Value.
const (
	StatMean = "mean"
	StatMAD  = "mad"
	StatStd  = "std"
	StatRMS  = "rms"
	StatMin  = "min"
	StatMax  = "max"
)

// Value returns the named statistic.
func (s SignalStats) Value(stat string) (float64, error) {
	switch stat {
	case StatMean:
		return s.Mean, nil
	case StatMAD:
		return s.MAD, nil
	case StatStd:
		return s.Std, nil
	case StatRMS:
		return s.RMS, nil
	case StatMin:
		return s.Min, nil
	case StatMax:
		return s.Max, nil
	}
	return math.NaN(), fmt.Errorf("unknown statistic %q", stat)
}

// Map returns the statistics keyed by stat name.
func (s SignalStats) Map() map[string]float64 {
	return map[string]float64{
		StatMean: s.Mean,
		StatMAD:  s.MAD,
		StatStd:  s.Std,
		StatRMS:  s.RMS,
		StatMin:  s.Min,
		StatMax:  s.Max,
	}
}

// Result is the outcome of post-processing one simulation.
type Result struct {
	Name     string
	Data     *parser.ForceData
	Lift     SignalStats
	Drag     SignalStats
	Side     *SignalStats // nil for 2d data
	Warnings []string
}

// Signal returns the stats for a signal name (lift, drag or side).
func (r *Result) Signal(name string) (SignalStats, error) {
	switch name {
	case SignalLift:
		return r.Lift, nil
	case SignalDrag:
		return r.Drag, nil
	case SignalSide:
		if r.Side != nil {
			return *r.Side, nil
		}
		return SignalStats{}, fmt.Errorf("simulation %s has no side force", r.Name)
	}
	return SignalStats{}, fmt.Errorf("unknown signal %q", name)
}
