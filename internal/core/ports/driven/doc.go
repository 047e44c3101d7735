// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding, LLM generation, prompt templates,
// vector and document storage, and document normalisation.
package driven
