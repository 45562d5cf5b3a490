package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type SplitStats struct {
	Train   int
	Dev     int
	Test    int
	Gold    int
	RedTeam int
	Sources []string
}

// WriteDataCard renders the markdown data card next to the split files.
func WriteDataCard(path string, stats SplitStats) error {
	var b strings.Builder
	b.WriteString("# DATA CARD\n\n")
	fmt.Fprintf(&b, "**Sources**: %s  \n", strings.Join(stats.Sources, ", "))
	b.WriteString("**Use**: Research & model fine-tuning (medical Q&A); de-identified.  \n")
	b.WriteString("**Schema**: instruction / input / output (+ meta: source, specialty, risk_level, complexity, lang_style, is_deidentified)\n\n")
	b.WriteString("## Splits\n")
	fmt.Fprintf(&b, "- Train: %d\n", stats.Train)
	fmt.Fprintf(&b, "- Dev:   %d\n", stats.Dev)
	fmt.Fprintf(&b, "- Test:  %d\n", stats.Test)
	fmt.Fprintf(&b, "- Gold:  %d\n", stats.Gold)
	fmt.Fprintf(&b, "- Red Team: %d\n\n", stats.RedTeam)
	b.WriteString("## Style guide for <think>\n")
	b.WriteString(ThinkStyleGuide + "\n\n")
	b.WriteString("## Caveats\n")
	b.WriteString("- specialty 多为 unknown（后续逐步补标）\n")
	b.WriteString("- risk_high 样本占比有限，建议持续扩充\n")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data card directory: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write data card: %w", err)
	}
	return nil
}
