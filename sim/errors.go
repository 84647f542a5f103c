package sim

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig marks configuration errors detected before a run starts.
	ErrInvalidConfig = errors.New("invalid simulation config")
	// ErrSafetyCapExceeded marks a run aborted by the iteration or horizon guard.
	ErrSafetyCapExceeded = errors.New("simulation safety cap exceeded")
)

// SimulationError is the terminal failure of a run. It carries the clock and,
// when known, the offending process and device.
type SimulationError struct {
	Err    error
	Clock  int64
	PID    int // -1 when no single process is at fault
	Device string
	Detail string
}

func (e *SimulationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v at t=%d", e.Err, e.Clock)
	if e.PID >= 0 {
		fmt.Fprintf(&sb, " (pid %d)", e.PID)
	}
	if e.Device != "" {
		fmt.Fprintf(&sb, " (device %s)", e.Device)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}
