// Package fault defines the error taxonomy shared across the
// orchestration kernel. Every fault surfaced at the coordinator
// boundary carries a timestamp, correlation id, machine-readable kind,
// and a recovery action, so callers can distinguish "retry", "fix
// input and resubmit", and "escalate to human" without parsing prose.
package fault

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind is the machine-readable fault category.
type Kind string

const (
	// KindValidation marks permanent schema noncompliance. One area is
	// rejected immediately; the failure is never retried.
	KindValidation Kind = "validation_error"
	// KindCycle marks a dependency cycle. Fatal for the whole batch.
	KindCycle Kind = "cycle_error"
	// KindPolicy marks a soft policy violation that routes to HUMAN.
	KindPolicy Kind = "policy_violation"
	// KindExternal marks a transient external-service failure.
	KindExternal Kind = "external_service_error"
	// KindDuplicate marks a soft duplicate/conflict rejection of one area.
	KindDuplicate Kind = "duplicate_conflict"
)

// Recovery is the action hint attached to a fault.
type Recovery string

const (
	// RecoveryRetry means the same request may succeed if retried.
	RecoveryRetry Recovery = "retry"
	// RecoveryFixInput means the caller must change the input and resubmit.
	RecoveryFixInput Recovery = "fix_input"
	// RecoveryEscalate means a human needs to look at it.
	RecoveryEscalate Recovery = "escalate"
)

// Fault is the concrete error type carried across subsystem boundaries.
type Fault struct {
	Kind          Kind
	Message       string
	CorrelationID string
	Timestamp     time.Time
	Recovery      Recovery
	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap returns the wrapped cause.
func (f *Fault) Unwrap() error { return f.Err }

// WithCorrelation returns a copy of the fault stamped with the
// correlation id, preserving the original timestamp.
func (f *Fault) WithCorrelation(id string) *Fault {
	clone := *f
	clone.CorrelationID = id
	return &clone
}

// New creates a fault of the given kind with the default recovery hint
// for that kind.
func New(kind Kind, format string, args ...any) *Fault {
	return &Fault{
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now().UTC(),
		Recovery:  defaultRecovery(kind),
	}
}

// Wrap creates a fault of the given kind wrapping a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Fault {
	f := New(kind, format, args...)
	f.Err = err
	return f
}

func defaultRecovery(kind Kind) Recovery {
	switch kind {
	case KindExternal:
		return RecoveryRetry
	case KindValidation, KindCycle, KindDuplicate:
		return RecoveryFixInput
	case KindPolicy:
		return RecoveryEscalate
	default:
		return RecoveryFixInput
	}
}

// IsKind reports whether err is (or wraps) a fault of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

// IsTransient reports whether err may succeed on retry. Only external
// service failures are transient; schema validation failures are
// permanent for a given input.
func IsTransient(err error) bool {
	return IsKind(err, KindExternal)
}

// CycleError reports a dependency cycle. It names exactly the set of
// nodes that could not be ordered; the batch is never partially
// emitted around them.
type CycleError struct {
	// Nodes are the unresolved node names, sorted for stable output.
	Nodes []string
}

// NewCycleError builds a CycleError from the unresolved node set.
func NewCycleError(nodes []string) *CycleError {
	sorted := make([]string, len(nodes))
	copy(sorted, nodes)
	sort.Strings(sorted)
	return &CycleError{Nodes: sorted}
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle among: %s", strings.Join(e.Nodes, ", "))
}

// AsFault converts the cycle error into a boundary fault.
func (e *CycleError) AsFault() *Fault {
	return Wrap(KindCycle, e, "batch contains a dependency cycle")
}
