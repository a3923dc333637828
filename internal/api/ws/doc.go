// Package ws streams exported span records to WebSocket clients. The
// stream exporter plugs into the batch processor alongside the file and
// console exporters, so a connected client sees every flushed span live.
package ws
