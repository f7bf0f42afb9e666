// Package openai implements the ai.Embedder interface against any
// OpenAI-compatible embeddings endpoint (OpenAI, Ollama, LocalAI, vLLM).
package openai
