package recovery

import (
	"encoding/json"
	"reflect"
	"testing"

	"go-property-enhancer/pkg/models"
)

const compliant = `{
  "issues": ["dim lighting", "cluttered countertop"],
  "suggestions": {
    "lighting": "Open the blinds and add a warm lamp",
    "removal": "Clear the countertop",
    "staging": "Add bar stools"
  },
  "enhance_prompt": "Bright modern kitchen, clean counters",
  "room_type": "kitchen",
  "quality_score": 62
}`

func compliantResult() models.AnalysisResult {
	return models.AnalysisResult{
		Issues: []string{"dim lighting", "cluttered countertop"},
		Suggestions: models.Suggestions{
			Lighting: "Open the blinds and add a warm lamp",
			Removal:  "Clear the countertop",
			Staging:  "Add bar stools",
		},
		EnhancePrompt: "Bright modern kitchen, clean counters",
		RoomType:      "kitchen",
		QualityScore:  62,
	}
}

func TestParse_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantTier TierName
		want     models.AnalysisResult
	}{
		{
			name:     "Compliant JSON passes through",
			raw:      compliant,
			wantTier: TierDirect,
			want:     compliantResult(),
		},
		{
			name:     "Surrounding whitespace is trimmed",
			raw:      "\n\t  " + compliant + "  \n",
			wantTier: TierDirect,
			want:     compliantResult(),
		},
		{
			name:     "JSON wrapped in prose",
			raw:      "Here is the analysis you asked for:\n" + compliant + "\nLet me know if you need more.",
			wantTier: TierEmbedded,
			want:     compliantResult(),
		},
		{
			name:     "JSON inside a markdown fence",
			raw:      "```json\n" + compliant + "\n```",
			wantTier: TierEmbedded,
			want:     compliantResult(),
		},
		{
			name:     "Empty response",
			raw:      "",
			wantTier: TierFallback,
			want:     Fallback(),
		},
		{
			name:     "Plain prose",
			raw:      "I'm sorry, I cannot analyze this image.",
			wantTier: TierFallback,
			want:     Fallback(),
		},
		{
			name:     "Truncated object",
			raw:      `{"issues":`,
			wantTier: TierFallback,
			want:     Fallback(),
		},
		{
			name:     "Brace span that is not JSON",
			raw:      "Use {curly} quotes {sparingly}",
			wantTier: TierFallback,
			want:     Fallback(),
		},
		{
			name:     "Two separate objects defeat the greedy span",
			raw:      `first {"room_type":"kitchen"} then {"room_type":"bedroom"}`,
			wantTier: TierFallback,
			want:     Fallback(),
		},
		{
			name:     "Top-level null is not an object",
			raw:      "null",
			wantTier: TierFallback,
			want:     Fallback(),
		},
		{
			name:     "Top-level array is not an object",
			raw:      `["dim lighting"]`,
			wantTier: TierFallback,
			want:     Fallback(),
		},
		{
			name: "Mistyped issues are kept alongside other fields",
			raw: `{"issues": "dim lighting", "suggestions": {"lighting": "l", "removal": "r", "staging": "s"},` +
				` "enhance_prompt": "p", "room_type": "kitchen", "quality_score": 62}`,
			wantTier: TierDirect,
			want: models.AnalysisResult{
				Issues:        []string{"dim lighting"},
				Suggestions:   models.Suggestions{Lighting: "l", Removal: "r", Staging: "s"},
				EnhancePrompt: "p",
				RoomType:      "kitchen",
				QualityScore:  62,
			},
		},
		{
			name:     "Mistyped fields inside prose",
			raw:      `Sure! {"room_type": 3, "quality_score": "high", "issues": ["a", 2]} Done.`,
			wantTier: TierEmbedded,
			want: models.AnalysisResult{
				Issues:   []string{"a", "2"},
				RoomType: "3",
			},
		},
	}

	parser := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tier := parser.Parse(tt.raw)
			if tier != tt.wantTier {
				t.Errorf("Expected tier %s, got %s", tt.wantTier, tier)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParse_PartialObjectIsTrusted(t *testing.T) {
	got, tier := NewParser().Parse(`{"room_type":"bedroom","extra":"ignored"}`)

	if tier != TierDirect {
		t.Fatalf("Expected direct tier, got %s", tier)
	}
	if got.RoomType != "bedroom" {
		t.Errorf("Expected room_type bedroom, got %q", got.RoomType)
	}
	if got.QualityScore != 0 || got.EnhancePrompt != "" {
		t.Errorf("Expected missing keys to stay empty, got %+v", got)
	}
	if got.Issues == nil || len(got.Issues) != 0 {
		t.Errorf("Expected empty issues slice, got %#v", got.Issues)
	}
}

func TestDecode_CoercesFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.AnalysisResult
	}{
		{
			name: "Null issues become empty",
			raw:  `{"issues": null}`,
			want: models.AnalysisResult{Issues: []string{}},
		},
		{
			name: "Object issues become empty",
			raw:  `{"issues": {"first": "dim"}}`,
			want: models.AnalysisResult{Issues: []string{}},
		},
		{
			name: "Nested values in issues are skipped, empty strings kept",
			raw:  `{"issues": ["dim", null, {"x": 1}, ["y"], "", true]}`,
			want: models.AnalysisResult{Issues: []string{"dim", "", "true"}},
		},
		{
			name: "Numbers keep their literal text",
			raw:  `{"enhance_prompt": 1.50, "room_type": false}`,
			want: models.AnalysisResult{Issues: []string{}, EnhancePrompt: "1.50", RoomType: "false"},
		},
		{
			name: "String suggestions are unusable",
			raw:  `{"suggestions": "more light", "room_type": "den"}`,
			want: models.AnalysisResult{Issues: []string{}, RoomType: "den"},
		},
		{
			name: "Partial suggestions with a mistyped category",
			raw:  `{"suggestions": {"lighting": ["lamp"], "staging": 4}}`,
			want: models.AnalysisResult{Issues: []string{}, Suggestions: models.Suggestions{Staging: "4"}},
		},
		{
			name: "Quoted score",
			raw:  `{"quality_score": " 58 "}`,
			want: models.AnalysisResult{Issues: []string{}, QualityScore: 58},
		},
		{
			name: "Unusable score is zero",
			raw:  `{"quality_score": [80]}`,
			want: models.AnalysisResult{Issues: []string{}},
		},
		{
			name: "Huge score saturates",
			raw:  `{"quality_score": 1e20}`,
			want: models.AnalysisResult{Issues: []string{}, QualityScore: models.ScoreFromFloat(1e20)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode(tt.raw)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParse_FloatScoreAccepted(t *testing.T) {
	got, tier := NewParser().Parse(`{"issues":[],"quality_score":71.5}`)
	if tier != TierDirect {
		t.Fatalf("Expected direct tier, got %s", tier)
	}
	if got.QualityScore != 71 {
		t.Errorf("Expected 71, got %d", got.QualityScore)
	}
}

func TestParse_AlwaysFiveKeys(t *testing.T) {
	inputs := []string{
		compliant,
		"prefix " + compliant,
		`{}`,
		`{"room_type":"exterior"}`,
		"",
		"no json at all",
		`{"issues":`,
	}

	parser := NewParser()
	for _, raw := range inputs {
		result, _ := parser.Parse(raw)
		data, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		var m map[string]json.RawMessage
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if len(m) != 5 {
			t.Errorf("Input %q: expected 5 keys, got %d (%s)", raw, len(m), data)
		}
		for _, key := range []string{"issues", "suggestions", "enhance_prompt", "room_type", "quality_score"} {
			if _, ok := m[key]; !ok {
				t.Errorf("Input %q: missing key %s", raw, key)
			}
		}
		if string(m["issues"]) == "null" {
			t.Errorf("Input %q: issues serialized as null", raw)
		}
	}
}

func TestFallback_ReturnsIndependentCopies(t *testing.T) {
	a := Fallback()
	a.Issues[0] = "mutated"

	b := Fallback()
	if b.Issues[0] != "Unable to fully analyze — try a clearer image" {
		t.Errorf("Fallback shares state between calls: %q", b.Issues[0])
	}
}

func TestParse_ChainWithoutFallbackStillTotal(t *testing.T) {
	parser := NewParserWithTiers(DirectTier{})

	got, tier := parser.Parse("garbage")
	if tier != TierFallback {
		t.Errorf("Expected fallback tier, got %s", tier)
	}
	if !reflect.DeepEqual(got, Fallback()) {
		t.Errorf("Expected static fallback, got %+v", got)
	}
}

func TestParser_Tiers(t *testing.T) {
	want := []TierName{TierDirect, TierEmbedded, TierFallback}
	if got := NewParser().Tiers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestEmbeddedTier_NoSpan(t *testing.T) {
	for _, raw := range []string{"", "no braces", "} reversed {", "{ unclosed"} {
		if _, err := (EmbeddedTier{}).Recover(raw); err == nil {
			t.Errorf("Expected error for %q", raw)
		}
	}
}
