package driven

import "context"

// Extractor turns an uploaded payload of one format into plain text.
type Extractor interface {
	// Extract returns the textual content of the payload.
	Extract(ctx context.Context, filename, mediaType string, data []byte) (string, error)
}

// ExtractorRegistry selects the extractor for an uploaded file.
type ExtractorRegistry interface {
	// ExtractorFor returns the extractor handling the given file. There is
	// always a fallback, so selection never fails.
	ExtractorFor(filename, mediaType string) Extractor
}
