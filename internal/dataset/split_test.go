package dataset

import (
	"fmt"
	"testing"
)

func testRecord(input, output string) Record {
	return Record{
		Instruction: DefaultInstruction,
		Input:       input,
		Output:      output,
		Meta:        Meta{Source: "test", RiskLevel: RiskLow},
	}
}

func TestDedupByQuestionKeepsFirst(t *testing.T) {
	records := []Record{
		testRecord("Hello, World!", "first"),
		testRecord("hello world", "second"),
		testRecord("另一个问题", "third"),
	}
	out := DedupByQuestion(records)
	if len(out) != 2 {
		t.Fatalf("expected 2 records after dedup, got %d", len(out))
	}
	if out[0].Output != "first" {
		t.Errorf("expected the first occurrence to survive, got %q", out[0].Output)
	}
}

func TestDedupByQuestionDropsInvalid(t *testing.T) {
	records := []Record{
		{Input: "  ", Output: "no question"},
		{Input: "有问题", Output: ""},
		testRecord("有问题", "有回答"),
	}
	out := DedupByQuestion(records)
	if len(out) != 1 {
		t.Fatalf("expected 1 valid record, got %d", len(out))
	}
}

// splitCorpus builds ten distinct question groups with two numeric paraphrases
// each; both paraphrases of a group always share one split group key.
func splitCorpus() []Record {
	records := []Record{}
	for i := 0; i < 10; i++ {
		topic := fmt.Sprintf("症状%c持续", 'a'+rune(i))
		records = append(records,
			testRecord(topic+"3天了怎么办", "回答一"),
			testRecord(topic+"5天了怎么办", "回答二"),
		)
	}
	return records
}

func TestStratifiedSplitKeepsGroupsTogether(t *testing.T) {
	records := splitCorpus()
	train, dev, test := StratifiedSplit(records, DefaultSplitRatios(), 42)

	if len(train)+len(dev)+len(test) != len(records) {
		t.Fatalf("split lost records: %d+%d+%d != %d", len(train), len(dev), len(test), len(records))
	}

	splitByKey := map[string]string{}
	check := func(name string, split []Record) {
		for _, record := range split {
			key := SplitGroupKey(record.Input)
			if prior, ok := splitByKey[key]; ok && prior != name {
				t.Errorf("group %s straddles splits %s and %s", key, prior, name)
			}
			splitByKey[key] = name
		}
	}
	check("train", train)
	check("dev", dev)
	check("test", test)

	// 10 groups at 0.8/0.1/0.1 cut at group indexes 8 and 9.
	if len(train) != 16 || len(dev) != 2 || len(test) != 2 {
		t.Errorf("unexpected split sizes: train=%d dev=%d test=%d", len(train), len(dev), len(test))
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	records := splitCorpus()
	train1, dev1, test1 := StratifiedSplit(records, DefaultSplitRatios(), 42)
	train2, dev2, test2 := StratifiedSplit(records, DefaultSplitRatios(), 42)

	for name, pair := range map[string][2][]Record{
		"train": {train1, train2},
		"dev":   {dev1, dev2},
		"test":  {test1, test2},
	} {
		if len(pair[0]) != len(pair[1]) {
			t.Fatalf("%s split not deterministic: %d vs %d", name, len(pair[0]), len(pair[1]))
		}
		for i := range pair[0] {
			if pair[0][i].Input != pair[1][i].Input {
				t.Fatalf("%s split ordering differs at index %d", name, i)
			}
		}
	}
}

func TestStratifiedSplitSingleGroup(t *testing.T) {
	records := []Record{
		testRecord("只有一个问题3天", "a"),
		testRecord("只有一个问题9天", "b"),
	}
	train, dev, test := StratifiedSplit(records, DefaultSplitRatios(), 7)
	if len(train) != 2 || len(dev) != 0 || len(test) != 0 {
		t.Fatalf("single group should land entirely in train: train=%d dev=%d test=%d",
			len(train), len(dev), len(test))
	}
}

func TestStratifiedSplitEmpty(t *testing.T) {
	train, dev, test := StratifiedSplit(nil, DefaultSplitRatios(), 1)
	if len(train) != 0 || len(dev) != 0 || len(test) != 0 {
		t.Fatalf("empty input should produce empty splits")
	}
}
