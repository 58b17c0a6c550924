// Package thinq implements the vendor device/session layer for LG ThinQ
// appliances: a REST session against the vendor cloud API and typed device
// models for air conditioners and refrigerators.
//
// The layer owns transport and protocol concerns only. It does not translate
// vendor vocabulary into platform vocabulary — that is the bridge package's
// job. Command methods update the locally cached snapshot optimistically on
// success, so a read immediately after a command reflects the commanded value
// until the next refresh replaces it with device-reported state.
//
// Command failures are reported as errors wrapping ErrCommandFailed and are
// never retried here; retry policy belongs to whoever owns the cadence.
package thinq
