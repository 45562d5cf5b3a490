package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"medsafe-rl/internal/dataset"
)

func main() {
	rawPath := flag.String("raw", "data/raw/medical_o1_sft.json", "Raw source file (JSON array or JSONL)")
	outDir := flag.String("out", "data/processed", "Output directory for split files")
	poolOut := flag.String("pool-out", "data/rl/training_prompts.jsonl", "Output path for the RL prompt pool")
	safetyRedPath := flag.String("safety-red", "data/rl/safety_red_team.jsonl", "Optional safety red-team JSONL")
	trainRatio := flag.Float64("train-ratio", 0.8, "Train split ratio (in groups)")
	devRatio := flag.Float64("dev-ratio", 0.1, "Dev split ratio (in groups)")
	seed := flag.Int64("seed", 42, "Shuffle seed for split assignment and pool sampling")
	poolSize := flag.Int("pool-size", 2000, "RL prompt pool target size")
	oversample := flag.Int("safety-oversample", 3, "Safety red-team oversampling factor")
	highRiskRatio := flag.Float64("high-risk-ratio", 0.6, "High-risk share of the train top-up")
	flag.Parse()

	samples, err := loadRawSamples(*rawPath)
	if err != nil {
		exitWith("failed to load raw samples: " + err.Error())
	}
	records, dropped := dataset.ConvertAll(samples)
	fmt.Printf("Converted: %d (dropped %d invalid)\n", len(records), dropped)

	deduped := dataset.DedupByQuestion(records)
	fmt.Printf("After dedup: %d\n", len(deduped))

	ratios := dataset.SplitRatios{
		Train: *trainRatio,
		Dev:   *devRatio,
		Test:  1 - *trainRatio - *devRatio,
	}
	train, dev, test := dataset.StratifiedSplit(deduped, ratios, *seed)

	gold, redTeam, err := dataset.Curate(dev, test)
	if err != nil {
		exitWith("failed to curate gold/red team sets: " + err.Error())
	}

	splits := map[string][]dataset.Record{
		"train.jsonl":    train,
		"dev.jsonl":      dev,
		"test.jsonl":     test,
		"gold_set.jsonl": gold,
		"red_team.jsonl": redTeam,
	}
	for name, records := range splits {
		if err := dataset.WriteJSONL(filepath.Join(*outDir, name), records); err != nil {
			exitWith("failed to write " + name + ": " + err.Error())
		}
	}

	safetyRed := []dataset.Record{}
	if _, err := os.Stat(*safetyRedPath); err == nil {
		loaded, skipped, err := dataset.ReadJSONL(*safetyRedPath)
		if err != nil {
			exitWith("failed to read safety red-team file: " + err.Error())
		}
		if skipped > 0 {
			fmt.Printf("Safety red-team: skipped %d malformed lines\n", skipped)
		}
		safetyRed = loaded
	}

	pool := dataset.BuildPromptPool(gold, redTeam, safetyRed, train, dataset.PoolConfig{
		TargetSize:          *poolSize,
		SafetyRedOversample: *oversample,
		HighRiskRatio:       *highRiskRatio,
		Seed:                *seed,
	})
	if err := dataset.WriteJSONL(*poolOut, pool); err != nil {
		exitWith("failed to write prompt pool: " + err.Error())
	}

	if err := dataset.WriteDataCard(filepath.Join(filepath.Dir(*outDir), "DATA_CARD.md"), dataset.SplitStats{
		Train:   len(train),
		Dev:     len(dev),
		Test:    len(test),
		Gold:    len(gold),
		RedTeam: len(redTeam),
		Sources: []string{"medical-o1-reasoning"},
	}); err != nil {
		exitWith("failed to write data card: " + err.Error())
	}

	fmt.Printf("Splits: train=%d dev=%d test=%d gold=%d red_team=%d\n",
		len(train), len(dev), len(test), len(gold), len(redTeam))
	fmt.Printf("Prompt pool: %d records at %s\n", len(pool), *poolOut)
	printRiskDistribution(pool)
}

// loadRawSamples accepts either a JSON array file or newline-delimited JSON, the
// two shapes the upstream dataset ships in. Malformed JSONL lines are skipped.
func loadRawSamples(path string) ([]dataset.RawSample, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("raw file %q is empty", path)
	}

	if strings.HasPrefix(trimmed, "[") {
		var samples []dataset.RawSample
		if err := json.Unmarshal([]byte(trimmed), &samples); err != nil {
			return nil, fmt.Errorf("parse raw JSON array: %w", err)
		}
		return samples, nil
	}

	samples := []dataset.RawSample{}
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var sample dataset.RawSample
		if err := json.Unmarshal([]byte(line), &sample); err != nil {
			continue
		}
		samples = append(samples, sample)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("raw file %q has no parseable records", path)
	}
	return samples, nil
}

func printRiskDistribution(records []dataset.Record) {
	dist := dataset.RiskDistribution(records)
	levels := make([]string, 0, len(dist))
	for level := range dist {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	fmt.Println("Risk distribution:")
	for _, level := range levels {
		count := dist[level]
		fmt.Printf("  %s: %d (%.1f%%)\n", level, count, float64(count)/float64(len(records))*100)
	}
}

func exitWith(message string) {
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
