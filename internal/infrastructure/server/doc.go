// Package server wires the course catalog service together.
//
// This package orchestrates all components:
//   - HTTP routing with Gin framework
//   - Middleware stack (recovery, tracing, metrics, access log, CORS, rate limiting)
//   - Span pipeline assembly (batch processor plus file/console/agent/stream exporters)
//   - Catalog store with optional read cache
//
// Server Lifecycle:
//  1. Load configuration from environment or YAML file
//  2. Initialize logger (production or development)
//  3. Assemble the span pipeline and tracer
//  4. Open the catalog store
//  5. Setup HTTP routes and middleware
//  6. Start HTTP server
//  7. Graceful shutdown on signal, flushing pending spans
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
