// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CollectionStore: Collection, chunk, file and index artifact persistence
//   - ExtractorRegistry: Selects the text extractor for an uploaded file
//   - ProviderRegistry: Resolves the HTTP client for a model provider
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Captioner: Image caption generation. Without it, image uploads keep
//     their extracted placeholder text.
//   - AuditStore: Inference run history. Without it, runs are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or provider package
package driven
