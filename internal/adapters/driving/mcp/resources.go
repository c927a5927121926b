package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Flowport resources.
	uriScheme = "flowport://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing collections.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "List of all knowledge collections",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	// Template for the documents of one collection.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{collectionId}/documents",
		Name:        "collection-documents",
		Description: "Documents ingested into a specific collection",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for document content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{collectionId}/documents/{documentId}",
		Name:        "document-content",
		Description: "Chunked text content of a specific document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// handleCollectionsResource returns the list of all collections.
func (s *Server) handleCollectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	cols, err := s.ports.Knowledge.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	infos := make([]CollectionOutput, len(cols))
	for i := range cols {
		infos[i] = CollectionOutput{
			ID:            cols[i].ID,
			Name:          cols[i].Name,
			Description:   cols[i].Description,
			DocumentCount: cols[i].DocumentCount,
			ChunkCount:    cols[i].ChunkCount,
			Ready:         cols[i].Ready,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling collections: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentsResource returns the documents of one collection.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract the id from flowport://collections/{collectionId}/documents.
	collectionID := extractCollectionID(req.Params.URI)
	if collectionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	col, err := s.ports.Knowledge.Get(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("loading collection: %w", err)
	}

	type docInfo struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		MediaType  string `json:"media_type"`
		ChunkCount int    `json:"chunk_count"`
	}

	infos := make([]docInfo, len(col.Documents))
	for i := range col.Documents {
		infos[i] = docInfo{
			ID:         col.Documents[i].ID,
			Title:      col.Documents[i].Title,
			MediaType:  col.Documents[i].MediaType,
			ChunkCount: col.Documents[i].ChunkCount,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentContentResource returns the chunk contents of one document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	collectionID, docID := extractDocumentRef(req.Params.URI)
	if collectionID == "" || docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	detail, err := s.ports.Knowledge.DocumentDetail(ctx, collectionID, docID)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}

	parts := make([]string, len(detail.Chunks))
	for i := range detail.Chunks {
		parts[i] = detail.Chunks[i].Content
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     strings.Join(parts, "\n\n"),
		}},
	}, nil
}

// extractCollectionID extracts the collection id from a URI like
// flowport://collections/{collectionId}/documents.
func extractCollectionID(uri string) string {
	const prefix = uriScheme + "collections/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractDocumentRef extracts the collection and document ids from a URI
// like flowport://collections/{collectionId}/documents/{documentId}.
func extractDocumentRef(uri string) (collectionID, docID string) {
	const prefix = uriScheme + "collections/"

	if !strings.HasPrefix(uri, prefix) {
		return "", ""
	}

	rest := strings.TrimPrefix(uri, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[1] != "documents" {
		return "", ""
	}

	return parts[0], parts[2]
}
