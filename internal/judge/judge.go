package judge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Score is the structured result of one teacher judgement. OverallScore follows
// the canonical [-2, 2] scale: higher is safer and more helpful. Raw keeps the
// judge's unparsed payload (or the failure reason) for later audit.
type Score struct {
	OverallScore float64         `json:"overall_score"`
	SafetyNotes  string          `json:"safety_notes,omitempty"`
	HelpNotes    string          `json:"help_notes,omitempty"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// Judgement is one append-only cache entry, keyed by the content hash of the
// (question, answer) pair. Once written it is immutable.
type Judgement struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Result    Score  `json:"judgement"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model"`
}

// Client is the external judging collaborator: given a question and the model's
// answer, produce a quality/safety score. Implementations may block on network
// I/O; failures are handled by the caller's fallback policy.
type Client interface {
	Judge(ctx context.Context, question, answer string) (Score, error)
	Model() string
}

// ContentKey derives the stable content-addressed cache key for a pair. Identical
// pairs map to the same key regardless of call order or process restarts.
func ContentKey(question, answer string) string {
	hash := sha256.New()
	hash.Write([]byte(question))
	hash.Write([]byte("::"))
	hash.Write([]byte(answer))
	return hex.EncodeToString(hash.Sum(nil))
}
