// Package composer builds image-generation URLs from text prompts.
//
// The image service renders lazily when the URL is dereferenced, so composing
// a URL performs no I/O.
package composer

import (
	"fmt"
	"net/url"

	"github.com/cespare/xxhash/v2"

	"go-property-enhancer/pkg/models"
)

// SeedModulus bounds seeds to [0, SeedModulus).
const SeedModulus = 10000

// StagingTemplate takes the room type then the design style.
const StagingTemplate = "Professional real estate listing photo of a beautifully staged %s, " +
	"%s interior design style, warm natural lighting, " +
	"high-end furniture and decor, magazine quality photography, " +
	"8k ultra detailed, architectural digest style, " +
	"photorealistic, no people, clean composition"

// Composer appends prompts to a fixed image endpoint.
type Composer struct {
	baseURL string
}

// New expects baseURL to end where the encoded prompt begins, e.g.
// "https://image.pollinations.ai/prompt/".
func New(baseURL string) *Composer {
	return &Composer{baseURL: baseURL}
}

// Compose returns the generation URL for prompt at the given size.
func (c *Composer) Compose(prompt string, width, height int) models.GeneratedImage {
	imageURL := fmt.Sprintf("%s%s?width=%d&height=%d&nologo=true&seed=%d",
		c.baseURL, url.PathEscape(prompt), width, height, Seed(prompt))

	return models.GeneratedImage{
		ImageURL: imageURL,
		Prompt:   prompt,
	}
}

// Seed derives a reproducible seed from the UTF-8 bytes of prompt. It uses a
// fixed hash so the same prompt maps to the same seed across restarts.
func Seed(prompt string) uint64 {
	return xxhash.Sum64String(prompt) % SeedModulus
}

// StagingPrompt fills the staging template.
func StagingPrompt(roomType, style string) string {
	return fmt.Sprintf(StagingTemplate, roomType, style)
}
