package ports

import (
	"context"
	"time"
)

type ProbeResult int

const (
	ProbeError ProbeResult = iota
	ProbeReachable
	ProbeTimedOut
)

func (r ProbeResult) String() string {
	switch r {
	case ProbeReachable:
		return "reachable"
	case ProbeTimedOut:
		return "timed_out"
	default:
		return "error"
	}
}

// Prober makes a single bounded connection attempt and never retries.
type Prober interface {
	Probe(ctx context.Context, host string, port int, timeout time.Duration) (ProbeResult, error)
}
