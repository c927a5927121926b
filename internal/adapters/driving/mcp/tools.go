package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/flowport/flowport/internal/core/services"
)

// ListCollectionsInput is the input schema for the list_collections tool.
type ListCollectionsInput struct{}

// ListCollectionsOutput is the output schema for the list_collections tool.
type ListCollectionsOutput struct {
	Collections []CollectionOutput `json:"collections"`
	Count       int                `json:"count"`
}

// CollectionOutput represents a single collection row.
type CollectionOutput struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	DocumentCount int    `json:"document_count"`
	ChunkCount    int    `json:"chunk_count"`
	Ready         bool   `json:"ready"`
}

// QueryCollectionInput is the input schema for the query_collection tool.
type QueryCollectionInput struct {
	CollectionID string `json:"collection_id" jsonschema:"the id of the collection to query"`
	Query        string `json:"query" jsonschema:"the question to retrieve context for"`
	TopK         int    `json:"top_k,omitempty" jsonschema:"maximum number of matches to return (default 4)"`
}

// QueryCollectionOutput is the output schema for the query_collection tool.
type QueryCollectionOutput struct {
	CollectionID string        `json:"collection_id"`
	Query        string        `json:"query"`
	Matches      []MatchOutput `json:"matches"`
	Count        int           `json:"count"`

	// Rendered is the matches formatted as a context block, ready to be
	// pasted into a prompt.
	Rendered string `json:"rendered,omitempty"`
}

// MatchOutput represents a single scored retrieval hit.
type MatchOutput struct {
	ChunkID       string  `json:"chunk_id"`
	Score         float64 `json:"score"`
	Content       string  `json:"content"`
	DocumentID    string  `json:"document_id,omitempty"`
	DocumentTitle string  `json:"document_title,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List all knowledge collections with their document and chunk counts",
	}, s.handleListCollections)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_collection",
		Description: "Retrieve the chunks most similar to a question from a collection",
	}, s.handleQueryCollection)
}

// handleListCollections handles the list_collections tool invocation.
func (s *Server) handleListCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCollectionsInput,
) (*mcp.CallToolResult, ListCollectionsOutput, error) {
	cols, err := s.ports.Knowledge.List(ctx)
	if err != nil {
		return nil, ListCollectionsOutput{}, err
	}

	output := ListCollectionsOutput{
		Collections: make([]CollectionOutput, len(cols)),
		Count:       len(cols),
	}
	for i := range cols {
		output.Collections[i] = CollectionOutput{
			ID:            cols[i].ID,
			Name:          cols[i].Name,
			Description:   cols[i].Description,
			DocumentCount: cols[i].DocumentCount,
			ChunkCount:    cols[i].ChunkCount,
			Ready:         cols[i].Ready,
		}
	}

	return nil, output, nil
}

// handleQueryCollection handles the query_collection tool invocation.
func (s *Server) handleQueryCollection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryCollectionInput,
) (*mcp.CallToolResult, QueryCollectionOutput, error) {
	result, err := s.ports.Knowledge.Query(ctx, input.CollectionID, input.Query, input.TopK)
	if err != nil {
		return nil, QueryCollectionOutput{}, err
	}

	output := QueryCollectionOutput{
		CollectionID: result.CollectionID,
		Query:        result.Query,
		Matches:      make([]MatchOutput, len(result.Matches)),
		Count:        len(result.Matches),
	}
	for i := range result.Matches {
		output.Matches[i] = MatchOutput{
			ChunkID:       result.Matches[i].ChunkID,
			Score:         result.Matches[i].Score,
			Content:       result.Matches[i].Content,
			DocumentID:    result.Matches[i].DocumentID,
			DocumentTitle: result.Matches[i].DocumentTitle,
		}
	}
	if len(result.Matches) > 0 {
		output.Rendered = services.RenderContext(result.Matches)
	}

	return nil, output, nil
}
