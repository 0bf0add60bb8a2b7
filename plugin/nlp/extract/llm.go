package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/timepilot/plugin/ai"
)

// llmIntentResponse is the strict JSON shape requested from the model. The
// model only locates the phrases; interpreting them into timestamps is done
// by the same rule parsing applied to raw text.
type llmIntentResponse struct {
	Summary      string `json:"summary"`
	StartTimeStr string `json:"start_time_str"`
	EndTimeStr   string `json:"end_time_str"`
}

// LLMExtractor extracts intents with an LLM locating the relevant phrases.
// Any model or decoding failure falls back to the rule pipeline, so
// extraction as a whole never fails.
type LLMExtractor struct {
	chat ai.ChatService
}

// NewLLMExtractor creates an LLM-backed extractor.
func NewLLMExtractor(chat ai.ChatService) *LLMExtractor {
	return &LLMExtractor{chat: chat}
}

// Extract implements the same contract as the rule-based Extract.
func (e *LLMExtractor) Extract(ctx context.Context, text string, now time.Time) (ParsedIntent, error) {
	resp, err := e.locatePhrases(ctx, text, now)
	if err != nil {
		slog.Warn("llm extraction failed, falling back to rules", "error", err)
		return Extract(text, now), nil
	}

	start, ok := ResolveStartPhrase(resp.StartTimeStr, now)
	if !ok {
		slog.Warn("llm start phrase unusable, falling back to rules", "phrase", resp.StartTimeStr)
		return Extract(text, now), nil
	}
	end, minutes := ResolveEndPhrase(resp.EndTimeStr, start)

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())
	intent := ParsedIntent{
		Title:           strings.TrimSpace(resp.Summary),
		ExactStart:      &start,
		ExactEnd:        &end,
		DurationMinutes: minutes,
		Period:          findPeriod(resp.StartTimeStr),
		TargetDate:      &day,
	}
	return intent, nil
}

func (e *LLMExtractor) locatePhrases(ctx context.Context, text string, now time.Time) (*llmIntentResponse, error) {
	systemPrompt := fmt.Sprintf(`You are a scheduling phrase locator. Extract the event summary and the time phrases from the user input into strict JSON.

Current Time: %s

Output Schema (JSON only, no markdown):
{
  "summary": "clean event title without time/date words",
  "start_time_str": "the start phrase, must contain both date and time, e.g. 'tomorrow 2pm' or '明天下午3点'",
  "end_time_str": "the end phrase, prefer a duration like '1 hour' or '90分钟', empty if not mentioned"
}

Rules:
1. Copy phrases from the input, do not compute timestamps yourself.
2. Leave a field empty when the input does not mention it.`,
		now.Format("2006-01-02 15:04:05 Mon"))

	response, err := e.chat.Chat(ctx, []ai.Message{
		ai.SystemPrompt(systemPrompt),
		ai.UserMessage(text),
	})
	if err != nil {
		return nil, fmt.Errorf("llm chat failed: %w", err)
	}

	// Clean code fences if present.
	jsonStr := strings.TrimSpace(response)
	jsonStr = strings.TrimPrefix(jsonStr, "```json")
	jsonStr = strings.TrimPrefix(jsonStr, "```")
	jsonStr = strings.TrimSuffix(jsonStr, "```")
	jsonStr = strings.TrimSpace(jsonStr)

	var resp llmIntentResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode llm response: %w, response: %s", err, response)
	}
	if resp.StartTimeStr == "" {
		return nil, fmt.Errorf("llm response missing start phrase")
	}
	return &resp, nil
}
