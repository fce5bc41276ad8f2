package models

// Default output dimensions for generated images.
const (
	DefaultWidth  = 1024
	DefaultHeight = 768
)

// EnhanceRequest asks for an enhanced rendition described by Prompt. An
// empty or absent prompt is accepted and composes a URL like any other.
type EnhanceRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width,omitempty" binding:"omitempty,min=1,max=4096"`
	Height int    `json:"height,omitempty" binding:"omitempty,min=1,max=4096"`
}

// StageRequest asks for a virtually staged room.
type StageRequest struct {
	RoomType string `json:"room_type"`
	Style    string `json:"style"`
	Width    int    `json:"width,omitempty" binding:"omitempty,min=1,max=4096"`
	Height   int    `json:"height,omitempty" binding:"omitempty,min=1,max=4096"`
}

// Dimensions returns width and height with defaults applied to zero values.
func Dimensions(width, height int) (int, int) {
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	return width, height
}

// GeneratedImage is a deferred reference: the URL is resolved by whoever
// dereferences it, nothing is fetched here.
type GeneratedImage struct {
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt"`
}

// StageResponse echoes the staging inputs alongside the generated reference.
type StageResponse struct {
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt"`
	RoomType string `json:"room_type"`
	Style    string `json:"style"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}
