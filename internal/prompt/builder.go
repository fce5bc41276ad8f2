// Package prompt builds the multimodal request sent to the analysis service.
package prompt

import (
	"encoding/base64"
	"strings"
)

// AnalysisInstruction asks the model for the five-key analysis object and
// nothing else.
const AnalysisInstruction = "You are an expert real estate photographer and image analyst. " +
	"Analyze this property image and provide a JSON response with exactly this structure:\n" +
	"{\n" +
	`  "issues": ["list of detected issues like poor lighting, clutter, empty rooms, bad angles"],` + "\n" +
	`  "suggestions": {` + "\n" +
	`    "lighting": "specific lighting correction advice",` + "\n" +
	`    "removal": "objects that should be removed for cleaner listing",` + "\n" +
	`    "staging": "virtual staging recommendations"` + "\n" +
	"  },\n" +
	`  "enhance_prompt": "A detailed prompt to generate an enhanced version of this property photo with professional real estate photography quality, corrected lighting, clean composition",` + "\n" +
	`  "room_type": "detected room type (living room, bedroom, kitchen, bathroom, exterior, etc)",` + "\n" +
	`  "quality_score": 65` + "\n" +
	"}\n" +
	"Respond ONLY with valid JSON, no extra text."

// DefaultMIME is assumed when an upload carries no usable content type.
const DefaultMIME = "image/jpeg"

// Payload is the request body accepted by the analysis service.
type Payload struct {
	Messages []Message `json:"messages"`
	Model    string    `json:"model"`
	JSONMode bool      `json:"jsonMode"`
}

type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is either a text part or an image_url part.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// Builder holds the immutable instruction and model selector.
type Builder struct {
	instruction string
	model       string
}

func NewBuilder(instruction, model string) *Builder {
	return &Builder{
		instruction: instruction,
		model:       model,
	}
}

// Build wraps image in a single user message after the instruction text.
// The bytes are forwarded as-is; rejecting non-images is left to the service.
func (b *Builder) Build(image []byte, mime string) Payload {
	return Payload{
		Messages: []Message{
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: b.instruction},
					{Type: "image_url", ImageURL: &ImageURL{URL: DataURI(image, mime)}},
				},
			},
		},
		Model:    b.model,
		JSONMode: true,
	}
}

// DataURI encodes data as a base64 data URI.
func DataURI(data []byte, mime string) string {
	mime = strings.TrimSpace(mime)
	if mime == "" {
		mime = DefaultMIME
	}

	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(mime) + base64.StdEncoding.EncodedLen(len(data)))
	sb.WriteString("data:")
	sb.WriteString(mime)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(data))
	return sb.String()
}
