// Package services implements the driving port interfaces.
//
// KnowledgeService owns the collection lifecycle: ingestion, chunking,
// index builds and retrieval. InferenceService composes provider requests,
// enriches them with retrieved context and records the outcome. Services
// contain the core business logic and orchestrate calls to driven ports
// (adapters); they never touch transports or storage directly.
package services
