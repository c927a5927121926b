package csv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
}

func TestExtract(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	t.Run("renders a pipe table", func(t *testing.T) {
		data := []byte("name,region\nalpha,eu\nbeta,us\n")
		text, err := extractor.Extract(ctx, "rows.csv", "text/csv", data)
		require.NoError(t, err)
		assert.Equal(t, "| name | region |\n| --- | --- |\n| alpha | eu |\n| beta | us |", text)
	})

	t.Run("ragged rows are tolerated", func(t *testing.T) {
		data := []byte("a,b,c\n1,2\n")
		text, err := extractor.Extract(ctx, "rows.csv", "text/csv", data)
		require.NoError(t, err)
		assert.Contains(t, text, "| a | b | c |")
		assert.Contains(t, text, "| 1 | 2 |")
	})

	t.Run("quoted fields", func(t *testing.T) {
		data := []byte("title,note\n\"hello, world\",fine\n")
		text, err := extractor.Extract(ctx, "rows.csv", "text/csv", data)
		require.NoError(t, err)
		assert.Contains(t, text, "| hello, world | fine |")
	})

	t.Run("malformed input", func(t *testing.T) {
		data := []byte("a,b\n\"unterminated\n")
		_, err := extractor.Extract(ctx, "rows.csv", "text/csv", data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing csv")
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := extractor.Extract(ctx, "rows.csv", "text/csv", nil)
		require.Error(t, err)
	})
}
