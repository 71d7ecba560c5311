package order

import "fmt"

// Status enumerates the order pipeline states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// statusRank orders the forward pipeline. Cancelled sits outside the pipeline
// and is handled separately.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusAccepted:  1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusDelivered: 4,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether a transition from s to next is allowed.
// Forward skips are legal (pending straight to ready is fine); transitions are
// never reverted, terminal states are immutable, and cancellation is only
// reachable while the order is still pending.
func (s Status) CanTransition(next Status) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return s == StatusPending
	}
	return statusRank[next] > statusRank[s]
}

// IllegalTransitionError indicates a status update rejected by the
// allowed-transition table.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}
