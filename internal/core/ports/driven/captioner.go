package driven

import "context"

// Captioner produces a short natural-language description of an image.
// This is an optional service - when nil, image ingestion keeps its
// placeholder text.
type Captioner interface {
	// Caption describes the image bytes. The api key authenticates the
	// upstream captioning model.
	Caption(ctx context.Context, data []byte, apiKey string) (string, error)
}
