// Package metrics exposes expvar-published counters for the flowr traversal
// engine and snapshot stores. It intentionally avoids external dependencies
// and is consumed by the optional flowr-server for /debug/vars and /metrics
// endpoints.
package metrics
