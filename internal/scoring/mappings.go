package scoring

// Option values offered by the default compass catalog.
const (
	ScaleLarge  = "大型企业"
	ScaleMedium = "中型企业"
	ScaleSmall  = "小微企业"

	TargetExecutive = "决策层/高管"
	TargetManager   = "中层管理者"
	TargetFrontline = "一线执行者"

	FocusCapability = "能力建设"
	FocusInnovation = "创新突破"
	FocusEfficiency = "效能提升"

	DurationOngoing  = "持续赋能(3个月+)"
	DurationSystem   = "系统课程(1-2周)"
	DurationWorkshop = "短期研讨(1-2天)"

	ApproachCase     = "案例驱动"
	ApproachTheory   = "理论导向"
	ApproachPractice = "实战演练"
)

// additiveWeights: contributions toward {strategy, efficiency, innovation}.
// The largest entries of each dimension sum to 100 per axis.
var additiveWeights = map[Dimension]weightTable{
	DimScale: {
		ScaleLarge:  {25, 6, 12},
		ScaleMedium: {18, 10, 15},
		ScaleSmall:  {10, 8, 10},
	},
	DimTarget: {
		TargetExecutive: {30, 10, 12},
		TargetManager:   {20, 20, 15},
		TargetFrontline: {10, 25, 10},
	},
	DimFocus: {
		FocusCapability: {25, 20, 18},
		FocusInnovation: {20, 15, 25},
		FocusEfficiency: {15, 30, 12},
	},
	DimDuration: {
		DurationOngoing:  {10, 18, 25},
		DurationSystem:   {7, 20, 18},
		DurationWorkshop: {4, 12, 10},
	},
	DimApproach: {
		ApproachCase:     {10, 12, 15},
		ApproachTheory:   {8, 8, 10},
		ApproachPractice: {6, 15, 20},
	},
}

// averagedTiers: 1-5 tiers toward {strategy, efficiency, innovation}.
var averagedTiers = map[Dimension]weightTable{
	DimScale: {
		ScaleLarge:  {5, 2, 3},
		ScaleMedium: {4, 4, 4},
		ScaleSmall:  {2, 3, 3},
	},
	DimTarget: {
		TargetExecutive: {5, 2, 3},
		TargetManager:   {4, 4, 4},
		TargetFrontline: {1, 5, 2},
	},
	DimFocus: {
		FocusCapability: {5, 4, 3},
		FocusInnovation: {4, 3, 5},
		FocusEfficiency: {3, 5, 2},
	},
	DimDuration: {
		DurationOngoing:  {3, 4, 5},
		DurationSystem:   {2, 5, 4},
		DurationWorkshop: {1, 3, 2},
	},
	DimApproach: {
		ApproachCase:     {4, 4, 4},
		ApproachTheory:   {3, 2, 2},
		ApproachPractice: {2, 5, 5},
	},
}

// averagedInputs lists the three dimensions averaged into each axis.
var averagedInputs = [axisCount][]Dimension{
	AxisStrategy:   {DimScale, DimTarget, DimFocus},
	AxisEfficiency: {DimTarget, DimDuration, DimApproach},
	AxisInnovation: {DimFocus, DimDuration, DimApproach},
}

var averagedBonuses = [axisCount][]bonus{
	AxisStrategy: {
		{when: Selections{DimTarget: TargetExecutive, DimDuration: DurationOngoing}, points: 1},
	},
	AxisEfficiency: {
		{when: Selections{DimApproach: ApproachPractice, DimDuration: DurationSystem}, points: 1},
	},
	AxisInnovation: {
		{when: Selections{DimFocus: FocusInnovation, DimDuration: DurationOngoing}, points: 1},
	},
}
