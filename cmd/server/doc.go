// Package main is the entry point for the course catalog service.
//
// The server exposes the catalog over a REST API, persists courses to a
// JSON flat file, and records every request into a span pipeline that
// batches and exports trace spans to a file, the console, an optional
// OTLP agent, and a live WebSocket feed.
//
// Configuration:
//   - Environment variables (12-factor)
//   - Optional YAML file via -config (replaces env lookup)
//   - CLI flags (override both)
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
//	# Explicit config file
//	./server -config config.yaml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, flushing pending spans
package main
