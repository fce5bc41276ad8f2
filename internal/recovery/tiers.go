package recovery

import (
	"errors"
	"strings"

	"go-property-enhancer/pkg/models"
)

// TierName identifies which recovery tier produced a result.
type TierName string

const (
	TierDirect   TierName = "direct"
	TierEmbedded TierName = "embedded"
	TierFallback TierName = "fallback"
)

var (
	errNoObject  = errors.New("no {...} span in response")
	errNotObject = errors.New("response is not a JSON object")
)

// Tier is one ranked attempt at turning raw model output into a result.
type Tier interface {
	Recover(raw string) (models.AnalysisResult, error)
	Name() TierName
}

// DirectTier parses the whole trimmed response.
type DirectTier struct{}

func (DirectTier) Recover(raw string) (models.AnalysisResult, error) {
	return decode(strings.TrimSpace(raw))
}

func (DirectTier) Name() TierName { return TierDirect }

// EmbeddedTier parses the span from the first '{' to the last '}'.
//
// This is a heuristic, not a JSON locator: it does not track nesting, so
// prose holding several brace blocks (or stray braces) yields a span that
// usually fails to parse and drops through to the next tier.
type EmbeddedTier struct{}

func (EmbeddedTier) Recover(raw string) (models.AnalysisResult, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return models.AnalysisResult{}, errNoObject
	}
	return decode(raw[start : end+1])
}

func (EmbeddedTier) Name() TierName { return TierEmbedded }

// FallbackTier always succeeds with a fixed generic analysis.
type FallbackTier struct{}

func (FallbackTier) Recover(string) (models.AnalysisResult, error) {
	return Fallback(), nil
}

func (FallbackTier) Name() TierName { return TierFallback }

// Fallback returns a fresh copy of the static result served when the model
// output cannot be parsed.
func Fallback() models.AnalysisResult {
	return models.AnalysisResult{
		Issues: []string{"Unable to fully analyze — try a clearer image"},
		Suggestions: models.Suggestions{
			Lighting: "Increase natural light or add warm fill lighting",
			Removal:  "Remove personal items and clutter",
			Staging:  "Add modern furniture and decor",
		},
		EnhancePrompt: "Professional real estate photo of a well-lit, clean, modern interior with warm lighting and elegant staging",
		RoomType:      "interior",
		QualityScore:  50,
	}
}

// decode accepts exactly one JSON object. Once it parses, it is trusted:
// missing keys become zero values, unknown ones are dropped and mistyped ones
// are coerced.
func decode(text string) (models.AnalysisResult, error) {
	obj, err := parseObject(text)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return fromObject(obj), nil
}
