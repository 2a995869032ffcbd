// Package timeouts defines shared timeout constants used across the
// commercial paper commands. Centralizing these values prevents drift
// between command boundaries and makes the durations discoverable.
package timeouts

import "time"

// Storage caps a single vault bookkeeping or query operation.
const Storage = 5 * time.Second

// Walkthrough caps a full demo lifecycle run.
const Walkthrough = 30 * time.Second

// Shutdown limits how long telemetry providers get to flush on exit.
const Shutdown = 5 * time.Second
