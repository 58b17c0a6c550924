// Package api implements the local HTTP API for the Gray Logic ThinQ Bridge.
//
// This package provides:
//   - Read-only REST endpoints for entity inspection and bridge metrics
//   - A rediscover endpoint for picking up account changes without restart
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for production deployments
//
// # Architecture
//
// The API is an operator-facing side door. Core talks to the bridge over
// MQTT; this server exists for diagnostics, dashboards, and commissioning.
// Entity commands are deliberately not exposed here — they flow through
// MQTT so Core stays the single command path.
//
// # Graceful Degradation
//
// The server operates without MQTT connectivity — entity reads reflect the
// last polled state.
package api
