package dataset

import (
	"testing"
)

func poolFixtures() (gold, redTeam, safetyRed, train []Record) {
	gold = []Record{
		riskRecord(1, RiskMedium),
		riskRecord(2, RiskLow),
	}
	redTeam = []Record{riskRecord(3, RiskHigh)}
	safetyRed = []Record{riskRecord(4, RiskHigh), riskRecord(5, RiskHigh)}
	for i := 100; i < 200; i++ {
		level := RiskLow
		if i%2 == 0 {
			level = RiskHigh
		}
		train = append(train, riskRecord(i, level))
	}
	return gold, redTeam, safetyRed, train
}

func TestBuildPromptPoolDedupAndTopUp(t *testing.T) {
	gold, redTeam, safetyRed, train := poolFixtures()
	cfg := PoolConfig{TargetSize: 50, SafetyRedOversample: 3, HighRiskRatio: 0.6, Seed: 42}
	pool := BuildPromptPool(gold, redTeam, safetyRed, train, cfg)

	if len(pool) != 50 {
		t.Fatalf("expected pool of 50, got %d", len(pool))
	}

	seen := map[string]int{}
	for _, record := range pool {
		seen[record.Input]++
	}
	for input, count := range seen {
		if count > 1 {
			t.Errorf("question %q appears %d times; pool must be unique by question", input, count)
		}
	}
	// Curated sets always come first.
	for i, want := range []string{"问题编号4", "问题编号5", "问题编号3", "问题编号1", "问题编号2"} {
		if pool[i].Input != want {
			t.Fatalf("pool[%d] = %q, want %q", i, pool[i].Input, want)
		}
	}
}

func TestBuildPromptPoolHighRiskShare(t *testing.T) {
	gold, redTeam, safetyRed, train := poolFixtures()
	cfg := PoolConfig{TargetSize: 55, SafetyRedOversample: 1, HighRiskRatio: 0.6, Seed: 42}
	pool := BuildPromptPool(gold, redTeam, safetyRed, train, cfg)

	// 5 curated plus a 50-record top-up at 0.6 high risk.
	topUp := pool[5:]
	if len(topUp) != 50 {
		t.Fatalf("expected 50 top-up records, got %d", len(topUp))
	}
	high := 0
	for _, record := range topUp {
		if record.Meta.HighRisk() {
			high++
		}
	}
	if high != 30 {
		t.Errorf("expected 30 high-risk top-up records, got %d", high)
	}
}

func TestBuildPromptPoolDeterministic(t *testing.T) {
	gold, redTeam, safetyRed, train := poolFixtures()
	cfg := DefaultPoolConfig()
	cfg.TargetSize = 40

	a := BuildPromptPool(gold, redTeam, safetyRed, train, cfg)
	b := BuildPromptPool(gold, redTeam, safetyRed, train, cfg)
	if len(a) != len(b) {
		t.Fatalf("pool size not deterministic: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Input != b[i].Input {
			t.Fatalf("pool ordering differs at index %d: %q vs %q", i, a[i].Input, b[i].Input)
		}
	}
}

func TestBuildPromptPoolNoTrainAvailable(t *testing.T) {
	gold, redTeam, safetyRed, _ := poolFixtures()
	cfg := PoolConfig{TargetSize: 100, SafetyRedOversample: 2, HighRiskRatio: 0.6, Seed: 1}
	pool := BuildPromptPool(gold, redTeam, safetyRed, nil, cfg)
	if len(pool) != 5 {
		t.Fatalf("expected the 5 curated records when train is empty, got %d", len(pool))
	}
}

func TestRiskDistribution(t *testing.T) {
	records := []Record{
		riskRecord(1, RiskHigh),
		riskRecord(2, RiskHigh),
		riskRecord(3, RiskLow),
		{Input: "无标注", Output: "回答"},
	}
	dist := RiskDistribution(records)
	if dist[RiskHigh] != 2 || dist[RiskLow] != 1 || dist[RiskUnknown] != 1 {
		t.Fatalf("unexpected distribution: %v", dist)
	}
	if dist[RiskHigh]+dist[RiskLow]+dist[RiskUnknown] != len(records) {
		t.Fatalf("distribution lost records: %v", dist)
	}
}
