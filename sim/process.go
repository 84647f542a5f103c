// Defines the Process struct that models one simulated program.
// Tracks arrival time, CPU demand, lifecycle state and the time accounting
// consumed by the final report.

package sim

import (
	"fmt"
)

// ProcessState represents the lifecycle state of a process.
type ProcessState string

const (
	StateNew      ProcessState = "new" // declared but not yet arrived
	StateReady    ProcessState = "ready"
	StateRunning  ProcessState = "running"
	StateBlocked  ProcessState = "blocked"
	StateFinished ProcessState = "finished"
)

// Process models a single program's lifecycle in the simulation.
type Process struct {
	PID           int   // Unique identifier
	CreationTime  int64 // Tick at which the process arrives
	ExecutionTime int64 // Total CPU demand in ticks
	Priority      int   // Carried through for reporting; round-robin ignores it
	MemoryNeeded  int64 // Bytes of virtual memory requested
	PageSequence  []int // Ordered page references
	IOChance      int   // 0-100, chance of requesting I/O on each dispatch

	State         ProcessState
	RemainingTime int64 // CPU ticks left; 0 means finished

	ReadyTime   int64 // Ticks spent in the ready queue
	BlockedTime int64 // Ticks spent blocked on a device (queued or in service)
	StartTime   int64 // Tick of first dispatch, -1 until dispatched
	FinishTime  int64 // Tick of completion, -1 until finished

	IOStartTime int64 // Tick the current device operation started, -1 if none
	IOEndTime   int64 // Tick the last device operation completed, -1 if none
	TotalIOTime int64 // Sum of serviced device operation times
	IORequests  int   // Number of I/O requests that actually blocked the process
}

// NewProcess creates a process in StateNew with its dynamic fields reset.
func NewProcess(pid int, creationTime, executionTime int64, priority int, memoryNeeded int64, pages []int, ioChance int) *Process {
	return &Process{
		PID:           pid,
		CreationTime:  creationTime,
		ExecutionTime: executionTime,
		Priority:      priority,
		MemoryNeeded:  memoryNeeded,
		PageSequence:  pages,
		IOChance:      ioChance,
		State:         StateNew,
		RemainingTime: executionTime,
		StartTime:     -1,
		FinishTime:    -1,
		IOStartTime:   -1,
		IOEndTime:     -1,
	}
}

// Reset restores the dynamic fields so the same descriptor can be replayed.
func (p *Process) Reset() {
	p.State = StateNew
	p.RemainingTime = p.ExecutionTime
	p.ReadyTime = 0
	p.BlockedTime = 0
	p.StartTime = -1
	p.FinishTime = -1
	p.IOStartTime = -1
	p.IOEndTime = -1
	p.TotalIOTime = 0
	p.IORequests = 0
}

// Clone returns a copy that shares no mutable state with p.
func (p *Process) Clone() *Process {
	c := *p
	c.PageSequence = append([]int(nil), p.PageSequence...)
	return &c
}

// TurnaroundTime is finish time minus creation time. Only meaningful once finished.
func (p *Process) TurnaroundTime() int64 {
	return p.FinishTime - p.CreationTime
}

// WaitingTime is turnaround time minus CPU demand.
func (p *Process) WaitingTime() int64 {
	return p.TurnaroundTime() - p.ExecutionTime
}

func (p Process) String() string {
	return fmt.Sprintf("Process: (PID: %d, State: %s, Remaining: %d, Creation: %d)", p.PID, p.State, p.RemainingTime, p.CreationTime)
}
