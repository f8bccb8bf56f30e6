package models

import (
	"encoding/json"
	"strings"
)

// AnalysisPayload is a tagged union over provider output: either valid JSON
// as the vendor returned it, or the original text when parsing failed. LLMs
// are not guaranteed to emit valid JSON, so unparsable output is preserved
// rather than dropped.
type AnalysisPayload struct {
	Parsed json.RawMessage `json:"-"`
	Raw    string          `json:"-"`
}

// ParsePayload classifies provider output. Whitespace is trimmed before
// validation so fenced or padded JSON still parses.
func ParsePayload(text string) AnalysisPayload {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return AnalysisPayload{Parsed: json.RawMessage(trimmed)}
	}
	return AnalysisPayload{Raw: text}
}

// MarshalJSON emits the parsed JSON verbatim, or {"raw": <text>} for
// unparsable output.
func (p AnalysisPayload) MarshalJSON() ([]byte, error) {
	if p.Parsed != nil {
		return p.Parsed, nil
	}
	return json.Marshal(map[string]string{"raw": p.Raw})
}

// UnmarshalJSON reverses MarshalJSON. A single-key {"raw": ...} object is
// treated as wrapped raw text; everything else is parsed output.
func (p *AnalysisPayload) UnmarshalJSON(data []byte) error {
	var wrapper map[string]string
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper) == 1 {
		if raw, ok := wrapper["raw"]; ok {
			*p = AnalysisPayload{Raw: raw}
			return nil
		}
	}
	*p = AnalysisPayload{Parsed: append(json.RawMessage(nil), data...)}
	return nil
}

// ProviderAttempt is the in-memory record of one gateway call for one
// competitor. Attempts are aggregated into the job result and discarded;
// they are never persisted on their own.
type ProviderAttempt struct {
	Competitor string          `json:"competitor"`
	Provider   string          `json:"provider"`
	Cost       float64         `json:"cost"`
	Success    bool            `json:"success"`
	Result     AnalysisPayload `json:"result"`
}
