// Package http implements the course-catalog HTTP API: catalog browsing,
// course submission, lookup by code, and the trace demonstration routes.
package http
