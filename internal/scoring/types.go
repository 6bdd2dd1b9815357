package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Dimension identifies one of the five compass inputs.
type Dimension string

const (
	DimScale    Dimension = "scale"
	DimTarget   Dimension = "target"
	DimFocus    Dimension = "focus"
	DimDuration Dimension = "duration"
	DimApproach Dimension = "approach"
)

// Dimensions lists the compass inputs in display order.
var Dimensions = []Dimension{DimScale, DimTarget, DimFocus, DimDuration, DimApproach}

var dimensionAliases = map[string]Dimension{
	"scale":    DimScale,
	"target":   DimTarget,
	"audience": DimTarget,
	"focus":    DimFocus,
	"depth":    DimFocus,
	"duration": DimDuration,
	"approach": DimApproach,
	"format":   DimApproach,
}

// ErrUnknownDimension is returned by ParseDimension for ids outside the compass.
var ErrUnknownDimension = errors.New("unknown dimension")

// ParseDimension normalizes a dimension id, accepting the alternate page ids.
func ParseDimension(raw string) (Dimension, error) {
	dim, ok := dimensionAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrUnknownDimension
	}
	return dim, nil
}

// Axis identifies one of the three output scores.
type Axis int

const (
	AxisStrategy Axis = iota
	AxisEfficiency
	AxisInnovation

	axisCount
)

// Axes lists the score axes in chart order.
var Axes = []Axis{AxisStrategy, AxisEfficiency, AxisInnovation}

var axisKeys = [axisCount]string{"strategy", "efficiency", "innovation"}

var axisLabels = [axisCount]string{"战略规划", "提产增效", "创新赋能"}

// Key returns the stable identifier of the axis.
func (a Axis) Key() string {
	if a < 0 || a >= axisCount {
		return ""
	}
	return axisKeys[a]
}

// Label returns the display label of the axis.
func (a Axis) Label() string {
	if a < 0 || a >= axisCount {
		return ""
	}
	return axisLabels[a]
}

// Selections maps each dimension to the chosen option value.
type Selections map[Dimension]string

// Clone returns an independent copy.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Complete reports whether every dimension holds a value.
func (s Selections) Complete() bool {
	return len(s.Missing()) == 0
}

// Missing lists the dimensions without a value, in display order.
func (s Selections) Missing() []Dimension {
	var out []Dimension
	for _, dim := range Dimensions {
		if strings.TrimSpace(s[dim]) == "" {
			out = append(out, dim)
		}
	}
	return out
}

// SelectionsFromMap builds Selections from raw string keys, normalizing aliases.
// Unknown keys are reported as an error.
func SelectionsFromMap(raw map[string]string) (Selections, error) {
	out := make(Selections, len(raw))
	for key, value := range raw {
		dim, err := ParseDimension(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDimension, key)
		}
		out[dim] = strings.TrimSpace(value)
	}
	return out, nil
}

// ScoreVector holds the three bounded axis scores produced by a scheme.
type ScoreVector struct {
	Scheme     SchemeName `json:"scheme"`
	Max        int        `json:"max"`
	Strategy   int        `json:"strategy"`
	Efficiency int        `json:"efficiency"`
	Innovation int        `json:"innovation"`
}

// Get returns the score on a single axis.
func (v ScoreVector) Get(axis Axis) int {
	switch axis {
	case AxisStrategy:
		return v.Strategy
	case AxisEfficiency:
		return v.Efficiency
	case AxisInnovation:
		return v.Innovation
	default:
		return 0
	}
}

// Values returns the scores in chart order.
func (v ScoreVector) Values() []int {
	return []int{v.Strategy, v.Efficiency, v.Innovation}
}
