package recommend

import (
	"strings"

	"compass-backend/internal/scoring"
)

// Fallback entries used when a selection value is not in a table.
const (
	fallbackFocus       = "以AI认知统一为起点，找准最能撬动业务的切入点，稳步推进组织的智能化升级。"
	fallbackContent     = "兼顾AI基础认知与场景化练习，帮助学员建立可迁移的方法论。"
	fallbackCombination = "**AI赋能入门方案**：AI 战略全景图 + 提示词工程实战。**推荐理由**：先统一认知，再快速上手工具，适合作为转型的第一步。"
)

var focusByTarget = map[string]string{
	scoring.TargetExecutive: "决策者的AI认知决定组织的上限：把AI从技术议题升级为战略议题，明确投入方向与节奏。",
	scoring.TargetManager:   "中层是AI落地的枢纽：把战略意图翻译成团队可执行的场景与指标，打通从试点到规模化的最后一公里。",
	scoring.TargetFrontline: "让每一位员工都成为AI的熟练使用者：把工具能力沉淀为日常习惯，释放一线的生产力。",
}

var focusByGoal = map[string]string{
	scoring.FocusCapability: "以体系化的能力建设打底，避免零散试点带来的认知断层。",
	scoring.FocusInnovation: "以创新突破为牵引，用AI重新审视产品与商业模式。",
	scoring.FocusEfficiency: "以效能提升为抓手，优先拿下可量化的降本增效成果。",
}

var contentByApproach = map[string]string{
	scoring.ApproachCase:     "以行业标杆案例拆解为主线，提炼可复用的AI应用模式与决策框架。",
	scoring.ApproachTheory:   "从大模型原理与能力边界讲起，建立完整的AI知识框架与评估方法。",
	scoring.ApproachPractice: "围绕真实业务场景动手实践，在演练中掌握提示词设计与流程改造方法。",
}

var contentByDuration = map[string]string{
	scoring.DurationWorkshop: "短期研讨聚焦认知对齐与共识形成。",
	scoring.DurationSystem:   "系统课程配合阶段作业，确保知识转化为技能。",
	scoring.DurationOngoing:  "持续赋能配套陪跑辅导，随业务迭代持续优化应用效果。",
}

var combinationByGoal = map[string]string{
	scoring.FocusCapability: "**AI领导力进阶方案**：AI 战略全景图 + 组织 AI 转型路线图。**推荐理由**：先看清格局，再规划路径，系统构建组织的AI能力底座。",
	scoring.FocusInnovation: "**创新引擎方案**：AI 产品创新工作坊 + 智能体应用开发。**推荐理由**：从创意孵化到原型落地，快速验证AI驱动的新产品与新模式。",
	scoring.FocusEfficiency: "**效能倍增方案**：AI 办公效率倍增 + 业务流程智能化改造。**推荐理由**：从个人效率到流程自动化，层层释放可量化的效率红利。",
}

var scaleNote = map[string]string{
	scoring.ScaleLarge:  "建议按业务线分批推进，并配套内部讲师培养。",
	scoring.ScaleMedium: "建议选取一到两个核心部门先行试点，再复制推广。",
	scoring.ScaleSmall:  "建议全员参与、快速迭代，让AI直接服务于核心业务。",
}

// StaticRecommendation derives a recommendation from lookup tables keyed by
// the selection values. Unknown values use fallback entries.
func StaticRecommendation(sel scoring.Selections) Result {
	return Result{
		Focus:       join(lookup(focusByTarget, sel[scoring.DimTarget], fallbackFocus), lookup(focusByGoal, sel[scoring.DimFocus], "")),
		Content:     join(lookup(contentByApproach, sel[scoring.DimApproach], fallbackContent), lookup(contentByDuration, sel[scoring.DimDuration], "")),
		Combination: join(lookup(combinationByGoal, sel[scoring.DimFocus], fallbackCombination), lookup(scaleNote, sel[scoring.DimScale], "")),
	}
}

func lookup(table map[string]string, value, fallback string) string {
	if text, ok := table[strings.TrimSpace(value)]; ok {
		return text
	}
	return fallback
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "")
}
