package dataset

import "math/rand"

// PoolConfig controls how the RL prompt pool is assembled. Safety red-team cases
// are oversampled to push the policy toward the worst-case scenarios; the top-up
// from train keeps a fixed high-risk share.
type PoolConfig struct {
	TargetSize          int
	SafetyRedOversample int
	HighRiskRatio       float64
	Seed                int64
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		TargetSize:          2000,
		SafetyRedOversample: 3,
		HighRiskRatio:       0.6,
		Seed:                42,
	}
}

// BuildPromptPool assembles the prompt pool sampled during the RL stage: the
// safety red-team set repeated SafetyRedOversample times, then the general
// red-team and gold sets, deduplicated by question, then topped up from train at
// HighRiskRatio high/critical records until TargetSize. Sampling is deterministic
// under Seed.
func BuildPromptPool(gold, redTeam, safetyRed, train []Record, cfg PoolConfig) []Record {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = DefaultPoolConfig().TargetSize
	}
	if cfg.SafetyRedOversample <= 0 {
		cfg.SafetyRedOversample = 1
	}
	if cfg.HighRiskRatio < 0 || cfg.HighRiskRatio > 1 {
		cfg.HighRiskRatio = DefaultPoolConfig().HighRiskRatio
	}

	pool := []Record{}
	for i := 0; i < cfg.SafetyRedOversample; i++ {
		pool = append(pool, safetyRed...)
	}
	pool = append(pool, redTeam...)
	pool = append(pool, gold...)

	seen := map[string]bool{}
	unique := make([]Record, 0, len(pool))
	for _, record := range pool {
		if seen[record.Input] {
			continue
		}
		seen[record.Input] = true
		unique = append(unique, record)
	}

	needed := cfg.TargetSize - len(unique)
	if needed <= 0 || len(train) == 0 {
		return unique
	}

	highRisk := []Record{}
	general := []Record{}
	for _, record := range train {
		if seen[record.Input] {
			continue
		}
		if record.Meta.HighRisk() {
			highRisk = append(highRisk, record)
		} else {
			general = append(general, record)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	highCount := int(float64(needed) * cfg.HighRiskRatio)
	unique = append(unique, sampleRecords(rng, highRisk, highCount)...)
	unique = append(unique, sampleRecords(rng, general, needed-highCount)...)
	return unique
}

func sampleRecords(rng *rand.Rand, items []Record, count int) []Record {
	if count >= len(items) {
		out := make([]Record, len(items))
		copy(out, items)
		return out
	}
	if count <= 0 {
		return nil
	}
	indexes := rng.Perm(len(items))[:count]
	out := make([]Record, 0, count)
	for _, idx := range indexes {
		out = append(out, items[idx])
	}
	return out
}

// RiskDistribution tallies records per risk level, for pipeline summaries.
func RiskDistribution(records []Record) map[string]int {
	out := map[string]int{}
	for _, record := range records {
		level := record.Meta.RiskLevel
		if level == "" {
			level = RiskUnknown
		}
		out[level]++
	}
	return out
}
