package dataset

import (
	"math/rand"
	"sort"
)

type SplitRatios struct {
	Train float64
	Dev   float64
	Test  float64
}

func DefaultSplitRatios() SplitRatios {
	return SplitRatios{Train: 0.8, Dev: 0.1, Test: 0.1}
}

// DedupByQuestion drops records whose question fingerprint was already seen,
// keeping the first occurrence. Invalid records are dropped as well.
func DedupByQuestion(records []Record) []Record {
	seen := map[string]bool{}
	out := make([]Record, 0, len(records))
	for _, record := range records {
		if !record.Valid() {
			continue
		}
		key := Fingerprint(record.Input)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, record)
	}
	return out
}

// StratifiedSplit assigns whole split groups to train/dev/test so paraphrases of
// the same question never straddle a split boundary. Group keys are shuffled
// deterministically under seed and the shuffled key list is cut at the ratio
// boundaries; ratios are therefore honored in group space, not record space.
// With zero or one group everything lands in train and the other splits are
// empty, which callers must tolerate.
func StratifiedSplit(records []Record, ratios SplitRatios, seed int64) (train, dev, test []Record) {
	groups := map[string][]Record{}
	order := []string{}
	for _, record := range records {
		key := SplitGroupKey(record.Input)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], record)
	}

	// Stable base order before shuffling keeps the split reproducible across
	// runs regardless of input ordering.
	sort.Strings(order)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	train = []Record{}
	dev = []Record{}
	test = []Record{}

	n := len(order)
	if n <= 1 {
		for _, key := range order {
			train = append(train, groups[key]...)
		}
		return train, dev, test
	}

	nTrain := int(float64(n) * ratios.Train)
	nDev := int(float64(n) * ratios.Dev)
	for idx, key := range order {
		switch {
		case idx < nTrain:
			train = append(train, groups[key]...)
		case idx < nTrain+nDev:
			dev = append(dev, groups[key]...)
		default:
			test = append(test, groups[key]...)
		}
	}
	return train, dev, test
}
