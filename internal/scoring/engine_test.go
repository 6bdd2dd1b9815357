package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var optionsByDimension = map[Dimension][]string{
	DimScale:    {ScaleLarge, ScaleMedium, ScaleSmall},
	DimTarget:   {TargetExecutive, TargetManager, TargetFrontline},
	DimFocus:    {FocusCapability, FocusInnovation, FocusEfficiency},
	DimDuration: {DurationOngoing, DurationSystem, DurationWorkshop},
	DimApproach: {ApproachCase, ApproachTheory, ApproachPractice},
}

// allSelections enumerates every complete combination of the default options.
func allSelections() []Selections {
	out := []Selections{{}}
	for _, dim := range Dimensions {
		next := make([]Selections, 0, len(out)*len(optionsByDimension[dim]))
		for _, partial := range out {
			for _, opt := range optionsByDimension[dim] {
				sel := partial.Clone()
				sel[dim] = opt
				next = append(next, sel)
			}
		}
		out = next
	}
	return out
}

func newEngine(t *testing.T, name SchemeName) *Engine {
	t.Helper()
	engine, err := NewEngine(name)
	require.NoError(t, err)
	return engine
}

func TestScoreAdditiveExample(t *testing.T) {
	engine := newEngine(t, SchemeAdditive)
	sel := Selections{
		DimScale:    ScaleLarge,
		DimTarget:   TargetExecutive,
		DimFocus:    FocusCapability,
		DimDuration: DurationOngoing,
		DimApproach: ApproachCase,
	}

	got := engine.Score(sel)

	assert.Equal(t, 100, got.Strategy)
	assert.Equal(t, 6+10+20+18+12, got.Efficiency)
	assert.Equal(t, 12+12+18+25+15, got.Innovation)
	assert.Equal(t, 100, got.Max)
	assert.Equal(t, SchemeAdditive, got.Scheme)
}

func TestScoreBoundedAndDeterministic(t *testing.T) {
	for _, name := range []SchemeName{SchemeAdditive, SchemeAveraged} {
		engine := newEngine(t, name)
		for _, sel := range allSelections() {
			first := engine.Score(sel)
			second := engine.Score(sel)
			require.Equal(t, first, second, "scheme %s not deterministic for %v", name, sel)
			for _, v := range first.Values() {
				require.GreaterOrEqual(t, v, 0)
				require.LessOrEqual(t, v, first.Max, "scheme %s out of bounds for %v", name, sel)
			}
		}
	}
}

func TestScoreUnknownValueFallsBackToLowestTier(t *testing.T) {
	cases := []struct {
		name   string
		scheme SchemeName
	}{
		{name: "additive", scheme: SchemeAdditive},
		{name: "averaged", scheme: SchemeAveraged},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newEngine(t, tc.scheme)
			for _, base := range allSelections() {
				for _, dim := range Dimensions {
					drifted := base.Clone()
					drifted[dim] = "未收录的选项"

					var lowest *ScoreVector
					for _, opt := range optionsByDimension[dim] {
						candidate := base.Clone()
						candidate[dim] = opt
						score := engine.Score(candidate)
						if lowest == nil {
							lowest = &score
							continue
						}
						lowest.Strategy = min(lowest.Strategy, score.Strategy)
						lowest.Efficiency = min(lowest.Efficiency, score.Efficiency)
						lowest.Innovation = min(lowest.Innovation, score.Innovation)
					}

					var got ScoreVector
					require.NotPanics(t, func() { got = engine.Score(drifted) })
					require.LessOrEqual(t, got.Strategy, lowest.Strategy)
					require.LessOrEqual(t, got.Efficiency, lowest.Efficiency)
					require.LessOrEqual(t, got.Innovation, lowest.Innovation)
				}
			}
		})
	}
}

func TestScoreUnknownValueMatchesFloorContribution(t *testing.T) {
	engine := newEngine(t, SchemeAdditive)
	base := Selections{
		DimScale:    ScaleLarge,
		DimTarget:   TargetExecutive,
		DimFocus:    FocusCapability,
		DimDuration: DurationOngoing,
		DimApproach: ApproachCase,
	}
	drifted := base.Clone()
	drifted[DimScale] = "集团公司"

	got := engine.Score(drifted)

	assert.Equal(t, 10+30+25+10+10, got.Strategy)
	assert.Equal(t, 6+10+20+18+12, got.Efficiency)
	assert.Equal(t, 10+12+18+25+15, got.Innovation)
}

func TestScoreEmptySelectionsDoesNotPanic(t *testing.T) {
	for _, name := range []SchemeName{SchemeAdditive, SchemeAveraged} {
		engine := newEngine(t, name)
		assert.NotPanics(t, func() { engine.Score(nil) })
		assert.NotPanics(t, func() { engine.Score(Selections{}) })
	}
}

func TestScoreAveragedBonusCapped(t *testing.T) {
	engine := newEngine(t, SchemeAveraged)
	sel := Selections{
		DimScale:    ScaleLarge,
		DimTarget:   TargetExecutive,
		DimFocus:    FocusCapability,
		DimDuration: DurationOngoing,
		DimApproach: ApproachCase,
	}

	got := engine.Score(sel)

	// strategy mean (5+5+5)/3 = 5, +1 executive/ongoing bonus
	assert.Equal(t, 6, got.Strategy)
	// efficiency mean (2+4+4)/3 = 3.33 -> 3, no bonus
	assert.Equal(t, 3, got.Efficiency)
	// innovation mean (3+5+4)/3 = 4, no bonus without 创新突破
	assert.Equal(t, 4, got.Innovation)
	assert.Equal(t, 6, got.Max)
}

func TestScoreAveragedInnovationBonus(t *testing.T) {
	engine := newEngine(t, SchemeAveraged)
	sel := Selections{
		DimScale:    ScaleSmall,
		DimTarget:   TargetManager,
		DimFocus:    FocusInnovation,
		DimDuration: DurationOngoing,
		DimApproach: ApproachPractice,
	}

	got := engine.Score(sel)

	// (5+5+5)/3 = 5, +1 bonus
	assert.Equal(t, 6, got.Innovation)
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		raw     string
		want    SchemeName
		wantErr bool
	}{
		{raw: "", want: SchemeAdditive},
		{raw: " Additive ", want: SchemeAdditive},
		{raw: "AVERAGED", want: SchemeAveraged},
		{raw: "weighted", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseScheme(tt.raw)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownScheme)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSelectionsMissingAndAliases(t *testing.T) {
	sel, err := SelectionsFromMap(map[string]string{
		"scale":    ScaleSmall,
		"audience": TargetManager,
		"depth":    FocusCapability,
	})
	require.NoError(t, err)

	assert.False(t, sel.Complete())
	assert.Equal(t, []Dimension{DimDuration, DimApproach}, sel.Missing())
	assert.Equal(t, TargetManager, sel[DimTarget])

	_, err = SelectionsFromMap(map[string]string{"budget": "low"})
	assert.ErrorIs(t, err, ErrUnknownDimension)
}

func TestAxisLabels(t *testing.T) {
	labels := make([]string, 0, len(Axes))
	for _, axis := range Axes {
		labels = append(labels, axis.Label())
	}
	assert.Equal(t, []string{"战略规划", "提产增效", "创新赋能"}, labels)
	assert.Equal(t, "", Axis(9).Key())
}
