// Package fs implements the collection store on a per-collection directory
// tree.
//
// Layout under the storage root:
//
//	<root>/<collection-id>/metadata.json
//	<root>/<collection-id>/chunks/<chunk-id>.txt
//	<root>/<collection-id>/files/<doc-id>_<original-name>
//	<root>/<collection-id>/index.json
//
// The index artifact is replaced by rename so concurrent readers see either
// the old or the new artifact, never a torn one.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driven"
)

const (
	metadataFile = "metadata.json"
	indexFile    = "index.json"
	chunksDir    = "chunks"
	filesDir     = "files"
	chunkExt     = ".txt"
)

// Ensure Store implements the interface.
var _ driven.CollectionStore = (*Store)(nil)

// Store is a directory-per-collection implementation of
// driven.CollectionStore.
type Store struct {
	root string
}

// NewStore creates a collection store rooted at the given directory.
// If root is empty, defaults to data/knowledge_bases.
func NewStore(root string) (*Store, error) {
	if root == "" {
		root = filepath.Join("data", "knowledge_bases")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	return &Store{root: root}, nil
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// CreateCollection writes the initial record for a new collection.
func (s *Store) CreateCollection(ctx context.Context, col *domain.Collection) error {
	dir := s.collectionDir(col.ID)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("collection %q: %w", col.ID, domain.ErrAlreadyExists)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating collection directory: %w", err)
	}
	for _, sub := range []string{chunksDir, filesDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("creating %s directory: %w", sub, err)
		}
	}

	return s.writeMetadata(col)
}

// ListCollections returns all stored collections sorted by id.
func (s *Store) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading storage root: %w", err)
	}

	cols := make([]domain.Collection, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, entry.Name(), metadataFile)); err != nil {
			continue
		}
		col, err := s.GetCollection(ctx, entry.Name())
		if err != nil {
			return nil, err
		}
		cols = append(cols, *col)
	}
	return cols, nil
}

// GetCollection retrieves one collection with its full document list.
func (s *Store) GetCollection(ctx context.Context, id string) (*domain.Collection, error) {
	data, err := os.ReadFile(s.metadataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("collection %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading collection metadata: %w", err)
	}

	var col domain.Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("decoding collection metadata: %w", err)
	}
	col.DocumentCount = len(col.Documents)
	return &col, nil
}

// SaveCollection rewrites a collection's metadata record.
func (s *Store) SaveCollection(ctx context.Context, col *domain.Collection) error {
	return s.writeMetadata(col)
}

// AppendDocument atomically appends a document entry to the collection's
// metadata. The caller must hold the collection's lock.
func (s *Store) AppendDocument(ctx context.Context, collectionID string, doc *domain.Document) error {
	col, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return err
	}

	col.Documents = append(col.Documents, *doc)
	col.DocumentCount = len(col.Documents)
	col.ChunkCount += doc.ChunkCount
	col.UpdatedAt = time.Now().UTC()
	col.Ready = false

	return s.writeMetadata(col)
}

// WriteChunk stores one chunk blob.
func (s *Store) WriteChunk(ctx context.Context, collectionID, chunkID, content string) error {
	dir := filepath.Join(s.collectionDir(collectionID), chunksDir)
	if err := s.ensureSubdir(collectionID, dir); err != nil {
		return err
	}

	path := filepath.Join(dir, chunkID+chunkExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing chunk: %w", err)
	}
	return nil
}

// ReadChunk retrieves one chunk blob.
func (s *Store) ReadChunk(ctx context.Context, collectionID, chunkID string) (string, error) {
	path := filepath.Join(s.collectionDir(collectionID), chunksDir, chunkID+chunkExt)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("chunk %q: %w", chunkID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("reading chunk: %w", err)
	}
	return string(data), nil
}

// ListChunks returns every stored chunk sorted by chunk id.
func (s *Store) ListChunks(ctx context.Context, collectionID string) ([]domain.Chunk, error) {
	dir := filepath.Join(s.collectionDir(collectionID), chunksDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading chunks directory: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, chunkExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading chunk %s: %w", name, err)
		}
		chunks = append(chunks, domain.Chunk{
			ID:      strings.TrimSuffix(name, chunkExt),
			Content: string(data),
		})
	}
	return chunks, nil
}

// WriteFile stores the raw bytes of an uploaded document.
func (s *Store) WriteFile(ctx context.Context, collectionID, docID, filename string, data []byte) error {
	dir := filepath.Join(s.collectionDir(collectionID), filesDir)
	if err := s.ensureSubdir(collectionID, dir); err != nil {
		return err
	}

	path := filepath.Join(dir, storedFileName(docID, filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// FilePath resolves the on-disk path of a stored upload.
func (s *Store) FilePath(ctx context.Context, collectionID, docID, filename string) (string, error) {
	path := filepath.Join(s.collectionDir(collectionID), filesDir, storedFileName(docID, filename))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file for document %q: %w", docID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("resolving file path: %w", err)
	}
	return path, nil
}

// WriteIndex atomically replaces the collection's index artifact.
func (s *Store) WriteIndex(ctx context.Context, collectionID string, data []byte) error {
	dir := s.collectionDir(collectionID)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("collection %q: %w", collectionID, domain.ErrNotFound)
		}
		return fmt.Errorf("resolving collection directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "index-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp index: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp index: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, indexFile)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing index: %w", err)
	}
	return nil
}

// ReadIndex loads the serialised index artifact.
func (s *Store) ReadIndex(ctx context.Context, collectionID string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.collectionDir(collectionID), indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("collection %q: %w", collectionID, domain.ErrIndexMissing)
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}
	return data, nil
}

func (s *Store) collectionDir(id string) string {
	return filepath.Join(s.root, id)
}

func (s *Store) metadataPath(id string) string {
	return filepath.Join(s.collectionDir(id), metadataFile)
}

// writeMetadata persists a collection record, recreating the collection
// directory if needed.
func (s *Store) writeMetadata(col *domain.Collection) error {
	dir := s.collectionDir(col.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating collection directory: %w", err)
	}

	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), data, 0o644); err != nil {
		return fmt.Errorf("writing collection metadata: %w", err)
	}
	return nil
}

// ensureSubdir creates a collection subdirectory, reporting an unknown
// collection rather than silently materialising its tree.
func (s *Store) ensureSubdir(collectionID, dir string) error {
	if err := os.Mkdir(dir, 0o755); err != nil && !os.IsExist(err) {
		if os.IsNotExist(err) {
			return fmt.Errorf("collection %q: %w", collectionID, domain.ErrNotFound)
		}
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// storedFileName keys an upload by document id so distinct documents with
// the same original name never collide.
func storedFileName(docID, filename string) string {
	return docID + "_" + filepath.Base(filename)
}
