package dataset

import (
	"strings"
	"testing"
)

func TestConvertMedicalO1(t *testing.T) {
	record, ok := ConvertMedicalO1(RawSample{
		Question:   "最近总是头疼，是什么原因？",
		ComplexCoT: "主诉解析：反复头痛，需考虑紧张性头痛与偏头痛的鉴别。",
		Response:   "常见原因包括紧张性头痛，建议就医检查。",
	})
	if !ok {
		t.Fatalf("conversion rejected a valid sample")
	}
	if record.Instruction != DefaultInstruction {
		t.Errorf("instruction = %q, want the default", record.Instruction)
	}
	if !strings.HasPrefix(record.Output, "<think>") || !strings.Contains(record.Output, "</think>\n") {
		t.Errorf("reasoning should be wrapped in think delimiters: %q", record.Output)
	}
	if record.Meta.Source != "medical-o1-reasoning" {
		t.Errorf("source = %q", record.Meta.Source)
	}
	if !record.Meta.IsDeidentified {
		t.Errorf("converted records should be marked de-identified")
	}
}

func TestConvertMedicalO1FieldFallbacks(t *testing.T) {
	record, ok := ConvertMedicalO1(RawSample{
		QuestionL: "咳嗽三天了",
		Reasoning: "考虑上呼吸道感染。",
		Answer:    "多为病毒性感染，注意休息，必要时就诊。",
	})
	if !ok {
		t.Fatalf("lowercase field names should be accepted")
	}
	if record.Input != "咳嗽三天了" {
		t.Errorf("question fallback failed: %q", record.Input)
	}
}

func TestConvertMedicalO1WithoutReasoning(t *testing.T) {
	record, ok := ConvertMedicalO1(RawSample{
		Question: "感冒了怎么办",
		Response: "注意休息，多喝水，症状加重及时就诊。",
	})
	if !ok {
		t.Fatalf("samples without reasoning are still valid")
	}
	if strings.Contains(record.Output, "<think>") {
		t.Errorf("no reasoning segment expected, got %q", record.Output)
	}
}

func TestConvertMedicalO1Rejections(t *testing.T) {
	if _, ok := ConvertMedicalO1(RawSample{Response: "只有回答"}); ok {
		t.Errorf("sample without question should be dropped")
	}
	if _, ok := ConvertMedicalO1(RawSample{Question: "只有问题"}); ok {
		t.Errorf("sample without answer should be dropped")
	}
}

func TestConvertMetaHeuristics(t *testing.T) {
	emergency, _ := ConvertMedicalO1(RawSample{
		Question: "突然胸痛出冷汗",
		Response: "请立即就医。",
	})
	if emergency.Meta.RiskLevel != RiskMedium {
		t.Errorf("emergency question risk = %q, want %q", emergency.Meta.RiskLevel, RiskMedium)
	}

	plain, _ := ConvertMedicalO1(RawSample{
		Question: "维生素C的作用",
		Response: "参与抗氧化等生理过程。",
	})
	if plain.Meta.RiskLevel != RiskLow {
		t.Errorf("plain question risk = %q, want %q", plain.Meta.RiskLevel, RiskLow)
	}
	if plain.Meta.Complexity != 1 {
		t.Errorf("short question complexity = %d, want 1", plain.Meta.Complexity)
	}

	colloquial, _ := ConvertMedicalO1(RawSample{
		Question: "我这腰疼得咋回事",
		Response: "多见于劳损，持续加重建议就诊。",
	})
	if colloquial.Meta.LangStyle != StyleColloquial {
		t.Errorf("lang style = %q, want %q", colloquial.Meta.LangStyle, StyleColloquial)
	}

	long, _ := ConvertMedicalO1(RawSample{
		Question: strings.Repeat("病情描述很长", 6) + "请问这是什么原因导致的",
		Response: "需要结合检查综合判断。",
	})
	if long.Meta.Complexity != 2 {
		t.Errorf("long question complexity = %d, want 2", long.Meta.Complexity)
	}
}

func TestConvertAllCountsDropped(t *testing.T) {
	records, dropped := ConvertAll([]RawSample{
		{Question: "问题一", Response: "回答一"},
		{Question: "缺少回答"},
		{Question: "问题二", Response: "回答二"},
	})
	if len(records) != 2 || dropped != 1 {
		t.Fatalf("expected 2 converted and 1 dropped, got %d and %d", len(records), dropped)
	}
}
