// Package domain defines the core business entities for Flowport.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Collection: A named, independently indexed knowledge base
//   - Document: One ingested source unit within a collection
//   - Chunk: An indexable, independently addressable slice of text
//   - Message: A single turn in a model conversation
//   - InferenceInput/InferenceResult: Provider-agnostic inference exchange
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
