/*
Package monitoring provides Prometheus-based metrics collection.

# Overview

Tracks HTTP requests, catalog operations, and the span export pipeline.
Metrics live on a private registry so tests can build throwaway
instances without global registration conflicts.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record custom metrics
	metrics.RecordCourseAdded()
	metrics.RecordSpanExport("file", 12)

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
