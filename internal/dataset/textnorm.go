package dataset

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"
)

var (
	lineBreakPattern    = regexp.MustCompile(`\r\n|\r`)
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	digitRunPattern     = regexp.MustCompile(`\d+`)
	sentencePunctuation = regexp.MustCompile(`[，。！？,.!?]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

const fingerprintPrefixRunes = 256

// Normalize trims surrounding whitespace, unifies line-break variants to "\n" and
// collapses three or more consecutive newlines to exactly two. The content is not
// otherwise altered.
func Normalize(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	s = lineBreakPattern.ReplaceAllString(s, "\n")
	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")
	return s
}

// Fingerprint derives the fine-grained dedup key for a question: lower-cased,
// stripped of everything non-alphanumeric and truncated to a fixed prefix before
// hashing, so long near-duplicates sharing a prefix collapse to one key.
func Fingerprint(text string) string {
	var b strings.Builder
	count := 0
	for _, r := range strings.ToLower(text) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			continue
		}
		b.WriteRune(r)
		count++
		if count >= fingerprintPrefixRunes {
			break
		}
	}
	return md5Hex(b.String())
}

// SplitGroupKey derives the coarse grouping key used only for split assignment:
// digit runs become a placeholder so questions differing by a number alone still
// land in the same group.
func SplitGroupKey(text string) string {
	t := strings.ToLower(text)
	t = digitRunPattern.ReplaceAllString(t, "<num>")
	t = sentencePunctuation.ReplaceAllString(t, "")
	t = strings.TrimSpace(whitespaceRun.ReplaceAllString(t, " "))
	return md5Hex(t)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
