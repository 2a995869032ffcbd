package ledger

import "time"

// TimeWindow bounds the interval in which a proposal may be finalized.
// Either side may be open; contracts decide which bound they require.
type TimeWindow struct {
	NotBefore *time.Time
	NotAfter  *time.Time
}

// WindowUntil returns a window with only an upper bound.
func WindowUntil(notAfter time.Time) *TimeWindow {
	return &TimeWindow{NotAfter: &notAfter}
}

// WindowFrom returns a window with only a lower bound.
func WindowFrom(notBefore time.Time) *TimeWindow {
	return &TimeWindow{NotBefore: &notBefore}
}

// WindowBetween returns a window bounded on both sides.
func WindowBetween(notBefore, notAfter time.Time) *TimeWindow {
	return &TimeWindow{NotBefore: &notBefore, NotAfter: &notAfter}
}
