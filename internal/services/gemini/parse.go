package gemini

import (
	"encoding/json"
	"errors"
	"strings"

	"dubber/internal/oracle"
)

// parseSegments decodes the diarization response. The model occasionally
// wraps JSON in a markdown code fence despite the response MIME type, so
// fences are stripped before decoding.
func parseSegments(raw string) ([]oracle.DialogueSegment, error) {
	payload := stripFences(raw)
	var rows []struct {
		Speaker  string `json:"speaker"`
		Category string `json:"category"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return nil, err
	}
	segments := make([]oracle.DialogueSegment, 0, len(rows))
	for _, row := range rows {
		text := strings.TrimSpace(row.Text)
		if text == "" {
			continue
		}
		segments = append(segments, oracle.DialogueSegment{
			Speaker:  strings.TrimSpace(row.Speaker),
			Category: strings.TrimSpace(row.Category),
			Text:     text,
		})
	}
	if len(segments) == 0 && len(rows) > 0 {
		return nil, errors.New("diarization returned only empty utterances")
	}
	return segments, nil
}

// parseCategory decodes a speaker-analysis response. An unparsable answer
// returns the empty category, which maps to the default voice.
func parseCategory(raw string) string {
	var row struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &row); err != nil {
		return ""
	}
	return strings.TrimSpace(row.Category)
}

func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
