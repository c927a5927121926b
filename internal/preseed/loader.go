// Package preseed bootstraps collections from JSON pack files. Packs are
// loaded once at startup and, when watching is enabled, whenever a new
// pack lands in the directory.
package preseed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/flowport/flowport/internal/chunker"
	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driving"
)

// Pack is the on-disk shape of one preseeded collection.
type Pack struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	KnowledgeItems []PackItem `json:"knowledge_items"`
}

// PackItem is one titled text unit inside a pack. Chunking parameters are
// optional and fall back to the splitter defaults.
type PackItem struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	ChunkSize    *int   `json:"chunk_size,omitempty"`
	ChunkOverlap *int   `json:"chunk_overlap,omitempty"`
}

// Loader builds collections out of pack files.
type Loader struct {
	knowledge driving.KnowledgeService
	logger    *zap.Logger
}

// NewLoader creates a loader over the given knowledge service.
func NewLoader(knowledge driving.KnowledgeService, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		knowledge: knowledge,
		logger:    logger,
	}
}

// LoadDir loads every *.json pack in dir in lexical order. Individual pack
// failures are logged and skipped. A missing directory is not an error.
func (l *Loader) LoadDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Debug("preseed directory absent", zap.String("dir", dir))
			return nil
		}
		return fmt.Errorf("reading preseed directory: %w", err)
	}

	var packs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			packs = append(packs, entry.Name())
		}
	}
	sort.Strings(packs)

	for _, name := range packs {
		path := filepath.Join(dir, name)
		if _, err := l.LoadFile(ctx, path); err != nil {
			l.logger.Error("loading preseed pack",
				zap.String("path", path),
				zap.Error(err))
		}
	}

	return nil
}

// LoadFile loads one pack file. It returns nil without error when the
// pack's collection already exists.
func (l *Loader) LoadFile(ctx context.Context, path string) (*domain.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pack: %w", err)
	}

	var pack Pack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing pack: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	id := strings.TrimSpace(pack.ID)
	if id == "" {
		id = stem
	}

	if _, err := l.knowledge.Get(ctx, id); err == nil {
		l.logger.Info("preseed pack already loaded",
			zap.String("collection_id", id))
		return nil, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(pack.Name)
	if name == "" {
		name = titleWords(strings.ReplaceAll(stem, "-", " "))
	}

	col, err := l.knowledge.Create(ctx, domain.CreateCollectionInput{
		ID:          id,
		Name:        name,
		Description: pack.Description,
		Origin:      domain.OriginPreseeded,
	})
	if err != nil {
		return nil, err
	}

	sourceFile := filepath.Base(path)
	ingested := 0
	for _, item := range pack.KnowledgeItems {
		if strings.TrimSpace(item.Content) == "" {
			l.logger.Warn("skipping blank preseed item",
				zap.String("collection_id", col.ID),
				zap.String("title", item.Title))
			continue
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "Entry"
		}

		chunkSize := chunker.DefaultChunkSize
		if item.ChunkSize != nil {
			chunkSize = *item.ChunkSize
		}
		chunkOverlap := chunker.DefaultChunkOverlap
		if item.ChunkOverlap != nil {
			chunkOverlap = *item.ChunkOverlap
		}

		_, err := l.knowledge.IngestText(ctx, col.ID, domain.TextIngestInput{
			Title:        title,
			Content:      item.Content,
			ChunkSize:    chunkSize,
			ChunkOverlap: chunkOverlap,
			Metadata: map[string]any{
				"preseeded":   true,
				"source_file": sourceFile,
			},
		})
		if err != nil {
			l.logger.Error("ingesting preseed item",
				zap.String("collection_id", col.ID),
				zap.String("title", title),
				zap.Error(err))
			continue
		}
		ingested++
	}

	l.logger.Info("preseed pack loaded",
		zap.String("collection_id", col.ID),
		zap.Int("items", ingested))

	return l.knowledge.Get(ctx, col.ID)
}

// titleWords upper-cases the first rune of every word.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
