// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Flowport. It gives AI assistants tool and resource access to collection
// retrieval.
package mcp

import "errors"

// ErrMissingKnowledgeService is returned when the knowledge service is not provided.
var ErrMissingKnowledgeService = errors.New("mcp: knowledge service is required")
