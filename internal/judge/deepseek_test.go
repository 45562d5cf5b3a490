package judge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medsafe-rl/internal/deepseek"
)

func TestParseJudgeContentPlain(t *testing.T) {
	score, err := parseJudgeContent(`{"overall_score": 1.5, "safety_notes": "ok", "help_notes": "clear"}`)
	if err != nil {
		t.Fatalf("parseJudgeContent failed: %v", err)
	}
	if score.OverallScore != 1.5 {
		t.Errorf("overall = %v, want 1.5", score.OverallScore)
	}
	if score.SafetyNotes != "ok" || score.HelpNotes != "clear" {
		t.Errorf("notes not carried: %+v", score)
	}
}

func TestParseJudgeContentFenced(t *testing.T) {
	content := "```json\n{\"overall_score\": -2, \"safety_notes\": \"unsafe\"}\n```"
	score, err := parseJudgeContent(content)
	if err != nil {
		t.Fatalf("fenced payload should parse: %v", err)
	}
	if score.OverallScore != -2 {
		t.Errorf("overall = %v, want -2", score.OverallScore)
	}
}

func TestParseJudgeContentErrors(t *testing.T) {
	cases := []string{
		"",
		"```\n```",
		"not json",
		`{"safety_notes": "no score"}`,
	}
	for _, content := range cases {
		if _, err := parseJudgeContent(content); err == nil {
			t.Errorf("expected an error for %q", content)
		}
	}
}

func TestDeepSeekJudgeRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req deepseek.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected a system+user message pair, got %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(deepseek.ChatResponse{
			Choices: []deepseek.Choice{{
				Message: deepseek.Message{
					Role:    "assistant",
					Content: `{"overall_score": 0.8, "safety_notes": "fine", "help_notes": "helpful"}`,
				},
			}},
		})
	}))
	defer srv.Close()

	client := deepseek.NewClient(deepseek.Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
	judge := NewDeepSeekJudge(client)
	score, err := judge.Judge(context.Background(), "问题", "回答")
	if err != nil {
		t.Fatalf("Judge failed: %v", err)
	}
	if score.OverallScore != 0.8 {
		t.Errorf("overall = %v, want 0.8", score.OverallScore)
	}
	if judge.Model() != "deepseek-chat" {
		t.Errorf("model = %q, want the default", judge.Model())
	}
}

func TestDeepSeekJudgeNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(deepseek.ChatResponse{})
	}))
	defer srv.Close()

	judge := NewDeepSeekJudge(deepseek.NewClient(deepseek.Config{BaseURL: srv.URL}))
	if _, err := judge.Judge(context.Background(), "q", "a"); err == nil {
		t.Fatalf("an empty choice list should error")
	}
}
