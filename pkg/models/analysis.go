package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AnalysisResult is the structured critique of a property photo.
// Every field is always serialized so clients see a fixed five-key shape.
type AnalysisResult struct {
	Issues        []string     `json:"issues"`
	Suggestions   Suggestions  `json:"suggestions"`
	EnhancePrompt string       `json:"enhance_prompt"`
	RoomType      string       `json:"room_type"`
	QualityScore  QualityScore `json:"quality_score"`
}

// Suggestions groups the three fixed recommendation categories.
type Suggestions struct {
	Lighting string `json:"lighting"`
	Removal  string `json:"removal"`
	Staging  string `json:"staging"`
}

// QualityScore is conventionally 0-100. Models sometimes answer with a float
// or a quoted number, so decoding accepts both and truncates to an int.
// The 0-100 range is not enforced; values beyond int are clamped.
type QualityScore int

// UnmarshalJSON implements json.Unmarshaler.
func (q *QualityScore) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return fmt.Errorf("quality_score: not a number: %s", data)
	}
	*q = ScoreFromFloat(f)
	return nil
}

// ScoreFromFloat truncates f toward zero, saturating at the int bounds.
func ScoreFromFloat(f float64) QualityScore {
	switch {
	case f >= math.MaxInt:
		return QualityScore(math.MaxInt)
	case f <= math.MinInt:
		return QualityScore(math.MinInt)
	}
	return QualityScore(int(f))
}

// Normalize replaces a missing issues list with an empty one so the field
// serializes as [] rather than null.
func (r *AnalysisResult) Normalize() {
	if r.Issues == nil {
		r.Issues = []string{}
	}
}
