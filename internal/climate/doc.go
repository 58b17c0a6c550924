// Package climate defines the platform-side climate entity vocabulary and the
// contract a climate entity must satisfy to be driven by the bridge runtime.
//
// The vocabulary (HVAC modes, preset labels, feature flags, temperature units)
// is the fixed platform contract: bridges translate vendor-specific state into
// these values and never invent new ones. Adapters implement Entity; the
// bridge runtime owns polling cadence, command transport, and state fan-out.
//
// Nothing in this package performs I/O. All types are plain values safe to
// copy and compare.
package climate
