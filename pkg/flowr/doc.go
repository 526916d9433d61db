// Package flowr provides a minimal public façade for defining rule graphs,
// composing flows, and running traversals without importing internal
// packages. It re-exports the core types for convenience and exposes a
// Runtime with in-memory components suitable for local usage and tests.
package flowr
