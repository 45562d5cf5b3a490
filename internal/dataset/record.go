package dataset

import "strings"

const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
	RiskUnknown  = "unknown"
)

const (
	StyleColloquial = "colloquial"
	StyleStandard   = "standard"
)

// DefaultInstruction is the system instruction attached to every converted record.
const DefaultInstruction = "你是一个医学专家，你需要根据用户的问题，给出带有思考的回答。"

// ThinkStyleGuide documents the expected structure of the reasoning segment.
const ThinkStyleGuide = "（写作规范）主诉解析→可能性与鉴别→红旗/风险→建议与不确定性→就医指征；禁止杜撰检查/处方剂量。"

type Meta struct {
	Source          string `json:"source"`
	Specialty       string `json:"specialty"`
	RiskLevel       string `json:"risk_level"`
	Complexity      int    `json:"complexity"`
	LangStyle       string `json:"lang_style"`
	IsDeidentified  bool   `json:"is_deidentified"`
	ThinkStyleGuide string `json:"think_style_guide,omitempty"`
}

// Record is one training or evaluation unit. Input holds the question, Output the
// answer, optionally wrapped in a <think>...</think> reasoning segment.
type Record struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	Meta        Meta   `json:"meta"`
}

// Valid reports whether the record carries both a question and an answer.
func (r Record) Valid() bool {
	return strings.TrimSpace(r.Input) != "" && strings.TrimSpace(r.Output) != ""
}

func (m Meta) HighRisk() bool {
	return m.RiskLevel == RiskHigh || m.RiskLevel == RiskCritical
}
