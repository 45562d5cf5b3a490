package dataset

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

const (
	goldHighCap  = 80
	goldRestCap  = 120
	goldTotalCap = 200
)

//go:embed red_team.json
var redTeamJSON []byte

// Curate selects the gold evaluation anchor set from the dev+test pool and returns
// the hand-authored red-team catalog alongside it. Pool order is preserved so the
// curated sets are reproducible for identical inputs: gold takes up to 80 non-low-risk
// records followed by up to 120 low-risk ones, capped at 200 total with no backfill
// when the high-risk side runs short.
func Curate(dev, test []Record) (gold, redTeam []Record, err error) {
	pool := make([]Record, 0, len(dev)+len(test))
	pool = append(pool, dev...)
	pool = append(pool, test...)

	high := make([]Record, 0, len(pool))
	rest := make([]Record, 0, len(pool))
	for _, record := range pool {
		if record.Meta.RiskLevel != RiskLow {
			high = append(high, record)
		} else {
			rest = append(rest, record)
		}
	}

	gold = make([]Record, 0, goldTotalCap)
	gold = append(gold, capSlice(high, goldHighCap)...)
	gold = append(gold, capSlice(rest, goldRestCap)...)
	gold = capSlice(gold, goldTotalCap)

	redTeam, err = RedTeamCatalog()
	if err != nil {
		return nil, nil, err
	}
	return gold, redTeam, nil
}

// RedTeamCatalog returns the embedded adversarial case set. The catalog is static:
// the same literal records every run unless the embedded file is edited.
func RedTeamCatalog() ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(redTeamJSON, &records); err != nil {
		return nil, fmt.Errorf("parse embedded red team catalog: %w", err)
	}
	for i := range records {
		if records[i].Instruction == "" {
			records[i].Instruction = DefaultInstruction
		}
		records[i].Meta.RiskLevel = RiskHigh
		records[i].Meta.Source = "constructed"
	}
	return records, nil
}

func capSlice(items []Record, max int) []Record {
	if len(items) > max {
		return items[:max]
	}
	return items
}
