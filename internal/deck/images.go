package deck

import "context"

// ImageSource resolves a slide's image idea to an image reference (URL or
// data URI). Swapping in a real provider does not touch deck rendering.
type ImageSource interface {
	Resolve(ctx context.Context, idea string) (string, error)
}

// placeholderImage is a 1x1 grey PNG used when no image provider is wired.
const placeholderImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mO8cePGfwAIdgN9pHFPcQAAAABJRU5ErkJggg=="

// PlaceholderSource is the default ImageSource: every idea resolves to the
// same fixed placeholder.
type PlaceholderSource struct{}

func (PlaceholderSource) Resolve(_ context.Context, _ string) (string, error) {
	return placeholderImage, nil
}
