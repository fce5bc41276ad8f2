package recovery

import (
	"bytes"
	"encoding/json"
	"strings"

	"go-property-enhancer/pkg/models"
)

// fromObject builds a result from a parsed object without rejecting any
// field. Each known key is coerced to its expected shape; values that cannot
// be coerced become the zero value.
func fromObject(obj map[string]json.RawMessage) models.AnalysisResult {
	result := models.AnalysisResult{
		Issues:        safeStrings(obj["issues"]),
		Suggestions:   safeSuggestions(obj["suggestions"]),
		EnhancePrompt: safeString(obj["enhance_prompt"]),
		RoomType:      safeString(obj["room_type"]),
		QualityScore:  safeScore(obj["quality_score"]),
	}
	result.Normalize()
	return result
}

// safeString accepts a string, or renders a number or bool as text.
func safeString(raw json.RawMessage) string {
	s, _ := scalarText(raw)
	return s
}

// safeStrings accepts a list, or wraps a single scalar in a one-item list.
// Nested objects, lists and nulls inside a list are skipped.
func safeStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) == nil && items != nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := scalarText(item); ok {
				out = append(out, s)
			}
		}
		return out
	}

	if s, ok := scalarText(raw); ok {
		return []string{s}
	}
	return []string{}
}

// safeSuggestions coerces each category of a suggestions object. Anything
// other than an object yields empty suggestions.
func safeSuggestions(raw json.RawMessage) models.Suggestions {
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return models.Suggestions{}
	}
	return models.Suggestions{
		Lighting: safeString(obj["lighting"]),
		Removal:  safeString(obj["removal"]),
		Staging:  safeString(obj["staging"]),
	}
}

func safeScore(raw json.RawMessage) models.QualityScore {
	var q models.QualityScore
	if len(raw) == 0 || q.UnmarshalJSON(raw) != nil {
		return 0
	}
	return q
}

// scalarText reports false for nulls, objects, lists and missing values.
func scalarText(raw json.RawMessage) (string, bool) {
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64, bool:
		// Keep the literal as written so 62 does not become 62.000000.
		return string(bytes.TrimSpace(raw)), true
	}
	return "", false
}

// parseObject accepts exactly one JSON object.
func parseObject(text string) (map[string]json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return nil, errNotObject
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}
