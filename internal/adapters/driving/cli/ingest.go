package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowport/flowport/internal/chunker"
	"github.com/flowport/flowport/internal/core/domain"
)

var (
	ingestChunkSize    int
	ingestChunkOverlap int
	ingestCaptionKey   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [collection-id] [file]",
	Short: "Ingest a file into a collection",
	Long: `Extracts text from the file, splits it into chunks and rebuilds the
collection's index. Plain text, CSV, HTML, XLSX, PDF and common image
formats are supported; anything else is decoded as plain text.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", chunker.DefaultChunkSize, "words per chunk")
	ingestCmd.Flags().IntVar(&ingestChunkOverlap, "chunk-overlap", chunker.DefaultChunkOverlap, "words shared by adjacent chunks")
	ingestCmd.Flags().StringVar(&ingestCaptionKey, "caption-key", "", "Hugging Face API key for image captioning")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	collectionID, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	// TypeByExtension may append parameters such as charset; only the
	// bare type is stored.
	mediaType := mime.TypeByExtension(filepath.Ext(path))
	if bare, _, ok := strings.Cut(mediaType, ";"); ok {
		mediaType = strings.TrimSpace(bare)
	}

	ctx := context.Background()

	doc, err := knowledgeService.IngestFile(ctx, collectionID, domain.FileIngestInput{
		Filename:     filepath.Base(path),
		MediaType:    mediaType,
		Data:         data,
		ChunkSize:    ingestChunkSize,
		ChunkOverlap: ingestChunkOverlap,
		CaptionKey:   ingestCaptionKey,
	})
	if err != nil {
		return fmt.Errorf("failed to ingest file: %w", err)
	}

	cmd.Printf("Ingested %s into %s\n\n", filepath.Base(path), collectionID)
	cmd.Printf("  Document: %s\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Type:     %s\n", doc.MediaType)
	cmd.Printf("  Chunks:   %d\n", doc.ChunkCount)
	cmd.Printf("  Size:     %d bytes\n", doc.SizeBytes)
	return nil
}
