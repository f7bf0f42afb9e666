// Package ai defines the embedding capability interface consumed by the
// ingestion pipeline, along with its configuration.
//
// Concrete implementations live in subpackages: ai/openai talks to
// OpenAI-compatible embedding APIs, ai/mock provides deterministic test
// doubles.
package ai
