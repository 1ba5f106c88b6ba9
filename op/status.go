// Package op defines Operation, the engine's unit of schedulable
// concurrency: it wraps either a controlled task or an actor's current
// handler, and carries the status the runtime uses to compute the
// enabled set at every scheduling point.
package op

import "fmt"

// StatusKind is the tag of an Operation's Status.
//
// NOTE: the ordering here is purely declarative (unlike
// eventloop.LoopState, nothing depends on the numeric values being
// stable across versions); it exists so Status can be compared cheaply
// and logged without allocating.
type StatusKind int

const (
	// None is the zero value: the operation has been allocated but not
	// yet entered into the runtime's operation set.
	None StatusKind = iota
	// Enabled means the operation may be chosen to run next.
	Enabled
	// BlockedOnOperation means the operation is waiting for another
	// operation (identified by OperationID) to reach a terminal state.
	BlockedOnOperation
	// BlockedOnResource means the operation is waiting on an opaque
	// resource handle (a lock, semaphore, or monitor condition).
	BlockedOnResource
	// BlockedOnReceive means the operation is parked in an actor's
	// receive_one, waiting for one of a set of event kinds.
	BlockedOnReceive
	// Delayed means the operation is waiting for RoundsLeft schedule
	// rounds to elapse (not wall-clock time).
	Delayed
	// Completed is terminal.
	Completed
)

func (k StatusKind) String() string {
	switch k {
	case None:
		return "None"
	case Enabled:
		return "Enabled"
	case BlockedOnOperation:
		return "BlockedOnOperation"
	case BlockedOnResource:
		return "BlockedOnResource"
	case BlockedOnReceive:
		return "BlockedOnReceive"
	case Delayed:
		return "Delayed"
	case Completed:
		return "Completed"
	default:
		return fmt.Sprintf("StatusKind(%d)", int(k))
	}
}

// CompletionReason further qualifies a Completed status.
type CompletionReason int

const (
	// CompletedNormally is the default completion reason.
	CompletedNormally CompletionReason = iota
	CompletedFaulted
	CompletedCancelled
)

func (r CompletionReason) String() string {
	switch r {
	case CompletedNormally:
		return "Normal"
	case CompletedFaulted:
		return "Faulted"
	case CompletedCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("CompletionReason(%d)", int(r))
	}
}

// Status is a tagged union over StatusKind; only the field matching Kind
// is meaningful.
type Status struct {
	Kind StatusKind

	// Valid when Kind == BlockedOnOperation.
	OperationID ID

	// Valid when Kind == BlockedOnResource.
	ResourceHandle string

	// Valid when Kind == BlockedOnReceive.
	ReceiveKinds map[string]struct{}

	// Valid when Kind == Delayed.
	RoundsLeft int

	// Valid when Kind == Completed.
	Reason CompletionReason
}

func (s Status) String() string {
	switch s.Kind {
	case BlockedOnOperation:
		return fmt.Sprintf("Blocked-on-Operation(%d)", s.OperationID)
	case BlockedOnResource:
		return fmt.Sprintf("Blocked-on-Resource(%s)", s.ResourceHandle)
	case BlockedOnReceive:
		kinds := make([]string, 0, len(s.ReceiveKinds))
		for k := range s.ReceiveKinds {
			kinds = append(kinds, k)
		}
		return fmt.Sprintf("Blocked-on-Receive(%v)", kinds)
	case Delayed:
		return fmt.Sprintf("Delayed(%d)", s.RoundsLeft)
	case Completed:
		return fmt.Sprintf("Completed(%s)", s.Reason)
	default:
		return s.Kind.String()
	}
}

// Enabled reports whether an operation in this status belongs to the
// runtime's enabled set. Blocked/Delayed/Completed/None are not.
func (s Status) Enabled() bool {
	return s.Kind == Enabled
}
