package dataset

import (
	"fmt"
	"testing"
)

func riskRecord(i int, level string) Record {
	return Record{
		Instruction: DefaultInstruction,
		Input:       fmt.Sprintf("问题编号%d", i),
		Output:      "回答",
		Meta:        Meta{Source: "test", RiskLevel: level},
	}
}

func TestCurateGoldCaps(t *testing.T) {
	dev := make([]Record, 0, 100)
	for i := 0; i < 100; i++ {
		dev = append(dev, riskRecord(i, RiskMedium))
	}
	test := make([]Record, 0, 150)
	for i := 100; i < 250; i++ {
		test = append(test, riskRecord(i, RiskLow))
	}

	gold, _, err := Curate(dev, test)
	if err != nil {
		t.Fatalf("Curate failed: %v", err)
	}
	if len(gold) != 200 {
		t.Fatalf("expected 200 gold records, got %d", len(gold))
	}
	for i := 0; i < 80; i++ {
		if gold[i].Meta.RiskLevel == RiskLow {
			t.Fatalf("gold[%d] should come from the non-low-risk slice", i)
		}
	}
	for i := 80; i < 200; i++ {
		if gold[i].Meta.RiskLevel != RiskLow {
			t.Fatalf("gold[%d] should come from the low-risk slice", i)
		}
	}
}

func TestCurateNoBackfillWhenHighRiskScarce(t *testing.T) {
	dev := []Record{}
	for i := 0; i < 10; i++ {
		dev = append(dev, riskRecord(i, RiskHigh))
	}
	test := []Record{}
	for i := 10; i < 310; i++ {
		test = append(test, riskRecord(i, RiskLow))
	}

	gold, _, err := Curate(dev, test)
	if err != nil {
		t.Fatalf("Curate failed: %v", err)
	}
	// 10 high plus the 120 low-risk cap; the short high side is not topped up.
	if len(gold) != 130 {
		t.Fatalf("expected 130 gold records, got %d", len(gold))
	}
}

func TestCuratePreservesPoolOrder(t *testing.T) {
	dev := []Record{riskRecord(1, RiskHigh), riskRecord(2, RiskHigh)}
	test := []Record{riskRecord(3, RiskHigh)}
	gold, _, err := Curate(dev, test)
	if err != nil {
		t.Fatalf("Curate failed: %v", err)
	}
	if len(gold) != 3 {
		t.Fatalf("expected 3 gold records, got %d", len(gold))
	}
	for i, want := range []string{"问题编号1", "问题编号2", "问题编号3"} {
		if gold[i].Input != want {
			t.Errorf("gold[%d] = %q, want %q", i, gold[i].Input, want)
		}
	}
}

func TestRedTeamCatalog(t *testing.T) {
	records, err := RedTeamCatalog()
	if err != nil {
		t.Fatalf("RedTeamCatalog failed: %v", err)
	}
	if len(records) == 0 {
		t.Fatalf("red team catalog is empty")
	}
	for i, record := range records {
		if !record.Valid() {
			t.Errorf("red team case %d is missing question or answer", i)
		}
		if record.Meta.RiskLevel != RiskHigh {
			t.Errorf("red team case %d risk level = %q, want %q", i, record.Meta.RiskLevel, RiskHigh)
		}
		if record.Meta.Source != "constructed" {
			t.Errorf("red team case %d source = %q, want constructed", i, record.Meta.Source)
		}
		if record.Instruction == "" {
			t.Errorf("red team case %d has no instruction", i)
		}
	}

	// The catalog is embedded, so two reads must agree.
	again, err := RedTeamCatalog()
	if err != nil {
		t.Fatalf("second RedTeamCatalog read failed: %v", err)
	}
	if len(again) != len(records) {
		t.Fatalf("catalog size changed between reads: %d vs %d", len(records), len(again))
	}
	for i := range records {
		if records[i].Input != again[i].Input {
			t.Fatalf("catalog case %d changed between reads", i)
		}
	}
}
