// Package observability centralizes logging and metrics so handlers
// and pipelines do not configure their own.
//
// Subpackages:
//   - logging: slog setup and context propagation
//   - metrics: Prometheus registry and recorders, served on /metrics
package observability
