// Package connectors provides implementations of the Fetcher interface
// for acquiring raw documents. Each fetcher knows how to retrieve bytes
// from a specific location type (local filesystem, HTTP URLs).
package connectors
