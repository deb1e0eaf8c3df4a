package analysis

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/user/lotuslake_go/internal/parser"
)

// Total force columns added by TotalForces.
const (
	ColTotalForceX = "totalForceX"
	ColTotalForceY = "totalForceY"
	ColTotalForceZ = "totalForceZ"
)

// Signal names used by stat selectors.
const (
	SignalLift = "lift"
	SignalDrag = "drag"
	SignalSide = "side"
)

// SignalColumns maps a signal to the force column it is computed from.
var SignalColumns = map[string]string{
	SignalLift: ColTotalForceY,
	SignalDrag: ColTotalForceX,
	SignalSide: ColTotalForceZ,
}

var signalPrefixes = map[string]string{
	"l": SignalLift,
	"d": SignalDrag,
	"s": SignalSide,
}

var selectorPattern = regexp.MustCompile(`^([a-z]+)([A-Z][A-Za-z]*)$`)

// Selector picks one statistic of one signal, e.g. "lMad" is the lift MAD.
type Selector struct {
	Signal string
	Stat   string
}

func (s Selector) String() string {
	return s.Signal + "." + s.Stat
}

// ParseSelector parses a study variable key of the form <signal><Stat>.
func ParseSelector(key string) (Selector, error) {
	m := selectorPattern.FindStringSubmatch(key)
	if m == nil {
		return Selector{}, fmt.Errorf("stat selector %q: want <signal><Stat>, e.g. lMad", key)
	}
	signal, ok := signalPrefixes[m[1]]
	if !ok {
		return Selector{}, fmt.Errorf("stat selector %q: unknown signal prefix %q", key, m[1])
	}
	sel := Selector{Signal: signal, Stat: strings.ToLower(m[2])}
	if _, err := (SignalStats{}).Value(sel.Stat); err != nil {
		return Selector{}, fmt.Errorf("stat selector %q: %w", key, err)
	}
	return sel, nil
}

// Select returns the value a selector names from a post-processing result.
func (r *Result) Select(sel Selector) (float64, error) {
	s, err := r.Signal(sel.Signal)
	if err != nil {
		return math.NaN(), err
	}
	return s.Value(sel.Stat)
}

// TotalForces adds the total (pressure + viscous) force columns to data.
func TotalForces(data *parser.ForceData) error {
	pairs := []struct{ total, pressure, viscous string }{
		{ColTotalForceX, parser.ColPressureForceX, parser.ColViscousForceX},
		{ColTotalForceY, parser.ColPressureForceY, parser.ColViscousForceY},
		{ColTotalForceZ, parser.ColPressureForceZ, parser.ColViscousForceZ},
	}
	for _, p := range pairs {
		pressure, okP := data.Column(p.pressure)
		viscous, okV := data.Column(p.viscous)
		if !okP || !okV {
			continue
		}
		total := make([]float64, len(pressure))
		floats.AddTo(total, pressure, viscous)
		if err := data.AddColumn(p.total, total); err != nil {
			return err
		}
	}
	if _, ok := data.Column(ColTotalForceX); !ok {
		return fmt.Errorf("force data has no pressure/viscous x columns")
	}
	return nil
}

// CalculateSignalStats computes the statistics of column over the
// fractional sample window r.
func CalculateSignalStats(data *parser.ForceData, column string, r Range) (SignalStats, error) {
	values, ok := data.Column(column)
	if !ok {
		return SignalStats{}, fmt.Errorf("column %s not found", column)
	}
	if err := r.Validate(); err != nil {
		return SignalStats{}, err
	}
	start, end := r.Bounds(len(values))
	window := values[start:end]
	if len(window) == 0 {
		return SignalStats{}, fmt.Errorf("column %s: range (%g, %g) of %d samples is empty", column, r.From, r.To, len(values))
	}

	mean := stat.Mean(window, nil)
	absDev := 0.0
	for _, v := range window {
		absDev += math.Abs(v - mean)
	}

	return SignalStats{
		Column:  column,
		Range:   r,
		Samples: len(window),
		Mean:    mean,
		MAD:     absDev / float64(len(window)),
		Std:     stat.StdDev(window, nil),
		RMS:     math.Sqrt(floats.Dot(window, window) / float64(len(window))),
		Min:     floats.Min(window),
		Max:     floats.Max(window),
	}, nil
}

// Options controls how a simulation's force file is post-processed.
type Options struct {
	Layout   parser.Layout
	SkipRows int
	Range    Range
}

// DefaultOptions drops the first 100 samples and keeps the last fifth.
func DefaultOptions() Options {
	return Options{Layout: parser.Layout3D, SkipRows: 100, Range: DefaultRange}
}

// PostProcess reads a force file, adds total forces and computes the lift,
// drag and (for 3d data) side force statistics.
func PostProcess(name, path string, opts Options) (*Result, error) {
	raw, err := parser.ParseForceFile(path, opts.Layout)
	if err != nil {
		return nil, err
	}
	data := raw.Skip(opts.SkipRows)
	if data.NumSamples == 0 {
		return nil, fmt.Errorf("%s: no samples left after skipping %d of %d", path, opts.SkipRows, raw.NumSamples)
	}
	if err := TotalForces(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	res := &Result{Name: name, Data: data, Warnings: data.ParseErrors}
	if res.Lift, err = CalculateSignalStats(data, ColTotalForceY, opts.Range); err != nil {
		return nil, fmt.Errorf("%s: lift: %w", path, err)
	}
	if res.Drag, err = CalculateSignalStats(data, ColTotalForceX, opts.Range); err != nil {
		return nil, fmt.Errorf("%s: drag: %w", path, err)
	}
	if _, ok := data.Column(ColTotalForceZ); ok {
		side, err := CalculateSignalStats(data, ColTotalForceZ, opts.Range)
		if err != nil {
			return nil, fmt.Errorf("%s: side: %w", path, err)
		}
		res.Side = &side
	}
	return res, nil
}
