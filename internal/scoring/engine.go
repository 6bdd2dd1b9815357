package scoring

import (
	"errors"
	"math"
	"strings"
)

// SchemeName selects a weighting scheme.
type SchemeName string

const (
	SchemeAdditive SchemeName = "additive"
	SchemeAveraged SchemeName = "averaged"
)

// ErrUnknownScheme is returned by ParseScheme for unsupported names.
var ErrUnknownScheme = errors.New("scoring scheme is invalid")

// ParseScheme normalizes a scheme name. Empty input selects the additive scheme.
func ParseScheme(raw string) (SchemeName, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(SchemeAdditive):
		return SchemeAdditive, nil
	case string(SchemeAveraged):
		return SchemeAveraged, nil
	default:
		return "", ErrUnknownScheme
	}
}

// Scheme maps selections to raw per-axis scores before clamping.
type Scheme interface {
	Name() SchemeName
	Max() int
	Raw(sel Selections) [axisCount]float64
}

// NewScheme returns the scheme registered under name.
func NewScheme(name SchemeName) (Scheme, error) {
	switch name {
	case SchemeAdditive:
		return additiveScheme{}, nil
	case SchemeAveraged:
		return averagedScheme{}, nil
	default:
		return nil, ErrUnknownScheme
	}
}

// Engine computes score vectors with a fixed scheme.
type Engine struct {
	scheme Scheme
}

// NewEngine constructs an engine for the named scheme.
func NewEngine(name SchemeName) (*Engine, error) {
	scheme, err := NewScheme(name)
	if err != nil {
		return nil, err
	}
	return &Engine{scheme: scheme}, nil
}

// NewEngineWithScheme wraps a custom scheme.
func NewEngineWithScheme(scheme Scheme) *Engine {
	return &Engine{scheme: scheme}
}

// Scheme returns the engine's scheme name.
func (e *Engine) Scheme() SchemeName {
	return e.scheme.Name()
}

// Score returns the clamped score vector for sel. It never fails: missing or
// unrecognized values fall back to the lowest tier of their dimension.
func (e *Engine) Score(sel Selections) ScoreVector {
	raw := e.scheme.Raw(sel)
	limit := e.scheme.Max()
	return ScoreVector{
		Scheme:     e.scheme.Name(),
		Max:        limit,
		Strategy:   clamp(raw[AxisStrategy], limit),
		Efficiency: clamp(raw[AxisEfficiency], limit),
		Innovation: clamp(raw[AxisInnovation], limit),
	}
}

func clamp(value float64, limit int) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > limit {
		return limit
	}
	return rounded
}

// weightTable holds per-axis contributions keyed by option value.
type weightTable map[string][axisCount]float64

// lookup returns the contribution of value, or the lowest tier of the table
// on every axis when value is not listed.
func (t weightTable) lookup(value string) [axisCount]float64 {
	if w, ok := t[strings.TrimSpace(value)]; ok {
		return w
	}
	return t.floor()
}

func (t weightTable) floor() [axisCount]float64 {
	var out [axisCount]float64
	first := true
	for _, w := range t {
		for axis := range out {
			if first || w[axis] < out[axis] {
				out[axis] = w[axis]
			}
		}
		first = false
	}
	return out
}

type additiveScheme struct{}

func (additiveScheme) Name() SchemeName { return SchemeAdditive }

func (additiveScheme) Max() int { return 100 }

func (additiveScheme) Raw(sel Selections) [axisCount]float64 {
	var sum [axisCount]float64
	for _, dim := range Dimensions {
		w := additiveWeights[dim].lookup(sel[dim])
		for axis := range sum {
			sum[axis] += w[axis]
		}
	}
	return sum
}

type averagedScheme struct{}

func (averagedScheme) Name() SchemeName { return SchemeAveraged }

func (averagedScheme) Max() int { return 6 }

func (averagedScheme) Raw(sel Selections) [axisCount]float64 {
	var out [axisCount]float64
	for _, axis := range Axes {
		inputs := averagedInputs[axis]
		total := 0.0
		for _, dim := range inputs {
			total += averagedTiers[dim].lookup(sel[dim])[axis]
		}
		out[axis] = math.Round(total / float64(len(inputs)))
		for _, b := range averagedBonuses[axis] {
			if b.applies(sel) {
				out[axis] += b.points
			}
		}
	}
	return out
}

type bonus struct {
	when   Selections
	points float64
}

func (b bonus) applies(sel Selections) bool {
	for dim, want := range b.when {
		if strings.TrimSpace(sel[dim]) != want {
			return false
		}
	}
	return true
}
