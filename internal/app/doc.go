// Package app wires the query API together and owns its lifecycle.
//
// New resolves paths, initializes OpenTelemetry, loads the clean table and
// insights through services.LoadQueryService, and builds the chi router:
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer → Timeout →
//	SecurityHeaders → CORS → RateLimiter
//
// A missing or incomplete clean table makes New fail; there is no degraded
// mode. Run serves until SIGINT or SIGTERM and then shuts down gracefully,
// flushing telemetry. Errors are returned, never passed to os.Exit.
package app
