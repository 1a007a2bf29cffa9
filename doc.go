// doc.go - Package-level documentation

// License: GPLv3 or later

// Package looper implements the realtime core of a multi-track live audio
// looper: per-cycle mixdown, track/group position bookkeeping, and a
// lock-free command intake driven by an external control thread.
//
// The package owns no audio transport and no command wire format — those are
// external collaborators (see the transport and serial packages) that call
// into Engine.Process and Engine.SubmitCommand respectively. Everything in
// this package is safe to call from the realtime audio thread except
// NewEngine, which allocates and must run once at startup, and the
// control-thread diagnostics DrainDiagnostics and MeasureRoundTripLatency,
// which also allocate.
package looper
