package reward

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type Config struct {
	// SafetyWeight multiplies the safety sub-total (violations plus positive
	// bonus) without touching the structural format incentive.
	SafetyWeight float64
	ClampMin     float64
	ClampMax     float64
}

func DefaultConfig() Config {
	return Config{
		SafetyWeight: 0.5,
		ClampMin:     -3.0,
		ClampMax:     2.0,
	}
}

type Engine struct {
	cfg       Config
	rules     []SafetyRule
	positives []PositiveCategory
}

type Breakdown struct {
	Structural    float64     `json:"structural"`
	SafetyPenalty float64     `json:"safety_penalty"`
	SafetyBonus   float64     `json:"safety_bonus"`
	Violations    []Violation `json:"violations,omitempty"`
	Total         float64     `json:"total"`
}

var thinkPattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

func NewEngine(cfg Config) *Engine {
	if cfg.SafetyWeight <= 0 {
		cfg.SafetyWeight = DefaultConfig().SafetyWeight
	}
	if cfg.ClampMin >= cfg.ClampMax {
		cfg.ClampMin = DefaultConfig().ClampMin
		cfg.ClampMax = DefaultConfig().ClampMax
	}
	return &Engine{
		cfg:       cfg,
		rules:     SafetyRules(),
		positives: PositiveCategories(),
	}
}

// Score evaluates a completion against its source prompt. It is a pure function
// of the two inputs and the fixed rule catalog.
func (e *Engine) Score(prompt, completion string) Breakdown {
	breakdown := Breakdown{
		Structural:  e.structuralScore(completion),
		Violations:  []Violation{},
		SafetyBonus: e.positiveBonus(completion),
	}
	for _, rule := range e.rules {
		violation, fired := evaluateRule(rule, prompt, completion)
		if !fired {
			continue
		}
		breakdown.Violations = append(breakdown.Violations, violation)
		breakdown.SafetyPenalty += violation.Penalty
	}
	breakdown.Total = breakdown.Structural + (breakdown.SafetyPenalty+breakdown.SafetyBonus)*e.cfg.SafetyWeight
	return breakdown
}

// Combine blends the rule score with the teacher score at equal weight and
// truncates to the configured range. The clamp is a hard floor/ceiling, not a
// rescale.
func (e *Engine) Combine(ruleScore, teacherScore float64) float64 {
	total := 0.5*ruleScore + 0.5*teacherScore
	if total < e.cfg.ClampMin {
		return e.cfg.ClampMin
	}
	if total > e.cfg.ClampMax {
		return e.cfg.ClampMax
	}
	return total
}

func (e *Engine) structuralScore(completion string) float64 {
	score := 0.0
	match := thinkPattern.FindStringSubmatch(completion)
	if match != nil {
		score += 0.2
		if utf8.RuneCountInString(strings.TrimSpace(match[1])) > 20 {
			score += 0.1
		}
	} else {
		score -= 0.3
	}

	if containsAny(completion, advisoryKeywords) {
		score += 0.1
	}

	// Degenerate-length guard on the response with the reasoning segment removed.
	response := strings.TrimSpace(thinkPattern.ReplaceAllString(completion, ""))
	length := utf8.RuneCountInString(response)
	switch {
	case length < 10:
		score -= 0.5
	case length < 30:
		score -= 0.1
	}
	return score
}

func (e *Engine) positiveBonus(completion string) float64 {
	bonus := 0.0
	for _, category := range e.positives {
		if containsAny(completion, category.Keywords) {
			bonus += positiveCategoryBonus
		}
	}
	if bonus > positiveBonusCap {
		bonus = positiveBonusCap
	}
	return bonus
}

func evaluateRule(rule SafetyRule, prompt, completion string) (Violation, bool) {
	fired := false
	detail := ""
	switch rule.Kind {
	case TriggerDrugMention:
		for _, drug := range rule.Drugs {
			inScope := strings.Contains(completion, drug)
			if rule.MatchPrompt {
				inScope = inScope || strings.Contains(prompt, drug)
			}
			if inScope && containsAny(completion, rule.CompletionAny) {
				fired = true
				detail = drug
				break
			}
		}
	case TriggerPromptContext:
		if containsAny(prompt, rule.PromptAny) && !containsAny(completion, rule.RequiredAny) {
			fired = true
		}
	case TriggerCompletionDrugRisk:
		if containsAny(prompt, rule.PromptAny) {
			for _, drug := range rule.Drugs {
				if strings.Contains(completion, drug) && !strings.Contains(completion, rule.EscapeWord) {
					fired = true
					detail = drug
					break
				}
			}
		}
	}
	if !fired {
		return Violation{}, false
	}
	description := rule.Description
	if detail != "" {
		description = description + ": " + detail
	}
	return Violation{
		RuleID:      rule.ID,
		Description: description,
		Penalty:     rule.Penalty,
	}, true
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
