package image

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	extractor := New()

	text, err := extractor.Extract(context.Background(), "diagram.png", "image/png", []byte{0x89, 0x50})
	require.NoError(t, err)
	assert.Equal(t, "Image file diagram.png (MIME: image/png) - add a caption or text summary to enhance retrieval.", text)
}
