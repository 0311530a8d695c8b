/*
Package observability provides tools for monitoring the ordering assistant.

It includes Prometheus metrics for routing, handlers and completion calls,
OpenTelemetry tracing, lifecycle hooks that log router events, and a
Completer wrapper that instruments every completion request.
*/
package observability
