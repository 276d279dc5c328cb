package server

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Stats are server-wide counters updated by every worker. The sharded
// counters keep the hot path free of cross-worker cache contention.
type Stats struct {
	accepted *xsync.Counter
	served   *xsync.Counter
	closed   *xsync.Counter
	rejected *xsync.Counter // protocol errors, overflows, slow consumers
}

// Snapshot is a point-in-time view of the server counters.
type Snapshot struct {
	Accepted int64 `json:"accepted"`
	Served   int64 `json:"served"`
	Closed   int64 `json:"closed"`
	Rejected int64 `json:"rejected"`
}

// NewStats creates zeroed server counters.
func NewStats() *Stats {
	return &Stats{
		accepted: xsync.NewCounter(),
		served:   xsync.NewCounter(),
		closed:   xsync.NewCounter(),
		rejected: xsync.NewCounter(),
	}
}

// Snapshot reads all counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Accepted: s.accepted.Value(),
		Served:   s.served.Value(),
		Closed:   s.closed.Value(),
		Rejected: s.rejected.Value(),
	}
}
