// Package middleware provides optional HTTP middleware for Strato
// applications: Prometheus metrics and OpenTelemetry tracing.
//
// Both are installed by the built-in "metrics" and "tracing" modules, or
// can be added manually with App.Use.
package middleware
