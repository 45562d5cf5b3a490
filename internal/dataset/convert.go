package dataset

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var emergencyQuestionKeywords = []string{"出血", "胸痛", "呼吸困难", "昏厥", "高热"}

var colloquialParticles = []string{"咋", "嘛", "啊", "呢"}

// RawSample is one upstream record as downloaded, before conversion. Field names
// vary across dataset releases, so each logical field carries its fallbacks.
type RawSample struct {
	Question  string `json:"Question"`
	QuestionL string `json:"question"`
	Problem   string `json:"problem"`

	ComplexCoT string `json:"Complex_CoT"`
	Reasoning  string `json:"reasoning"`
	Think      string `json:"think"`

	Response  string `json:"Response"`
	Answer    string `json:"answer"`
	ResponseL string `json:"response"`

	Specialty string `json:"specialty"`
}

// ConvertMedicalO1 maps an upstream reasoning-SFT sample into a Record. Samples
// without both a question and an answer are invalid; the caller drops them.
func ConvertMedicalO1(sample RawSample) (Record, bool) {
	question := Normalize(firstNonEmptyString(sample.Question, sample.QuestionL, sample.Problem))
	reasoning := Normalize(firstNonEmptyString(sample.ComplexCoT, sample.Reasoning, sample.Think))
	answer := Normalize(firstNonEmptyString(sample.Response, sample.Answer, sample.ResponseL))
	if question == "" || answer == "" {
		return Record{}, false
	}

	output := answer
	if reasoning != "" {
		output = fmt.Sprintf("<think>%s</think>\n%s", reasoning, answer)
	}

	specialty := strings.TrimSpace(sample.Specialty)
	if specialty == "" {
		specialty = "unknown"
	}

	return Record{
		Instruction: DefaultInstruction,
		Input:       question,
		Output:      output,
		Meta: Meta{
			Source:          "medical-o1-reasoning",
			Specialty:       specialty,
			RiskLevel:       riskLevelFor(question),
			Complexity:      complexityFor(question),
			LangStyle:       langStyleFor(question),
			IsDeidentified:  true,
			ThinkStyleGuide: ThinkStyleGuide,
		},
	}, true
}

// ConvertAll runs the converter over a raw batch, silently dropping samples that
// fail conversion. The dropped count is returned for logging only.
func ConvertAll(samples []RawSample) (records []Record, dropped int) {
	records = make([]Record, 0, len(samples))
	for _, sample := range samples {
		record, ok := ConvertMedicalO1(sample)
		if !ok {
			dropped++
			continue
		}
		records = append(records, record)
	}
	return records, dropped
}

func riskLevelFor(question string) string {
	for _, keyword := range emergencyQuestionKeywords {
		if strings.Contains(question, keyword) {
			return RiskMedium
		}
	}
	return RiskLow
}

func complexityFor(question string) int {
	if utf8.RuneCountInString(question) > 30 {
		return 2
	}
	return 1
}

func langStyleFor(question string) string {
	for _, particle := range colloquialParticles {
		if strings.Contains(question, particle) {
			return StyleColloquial
		}
	}
	return StyleStandard
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
