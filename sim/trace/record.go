package trace

// DispatchOutcome describes how a dispatch ended.
type DispatchOutcome string

const (
	OutcomePreempted DispatchOutcome = "preempted" // quantum used up, back to the ready tail
	OutcomeBlocked   DispatchOutcome = "blocked"   // interrupted by an I/O request
	OutcomeFinished  DispatchOutcome = "finished"  // burst completed
)

// DeviceEventKind describes a device transition.
type DeviceEventKind string

const (
	DeviceStart    DeviceEventKind = "start"    // admitted into a free slot
	DeviceQueue    DeviceEventKind = "queue"    // no free slot, appended to the wait queue
	DevicePromote  DeviceEventKind = "promote"  // moved from the wait queue into service
	DeviceComplete DeviceEventKind = "complete" // operation serviced, process unblocked
)

// DispatchRecord captures a single CPU dispatch and the system state around it.
type DispatchRecord struct {
	Clock     int64           // clock when the process was dispatched
	PID       int             // dispatched process
	Ran       int64           // CPU ticks consumed by this dispatch
	Remaining int64           // remaining CPU ticks after the dispatch
	Outcome   DispatchOutcome // how the dispatch ended
	Device    string          // device requested when Outcome is blocked
	Ready     []int           // PIDs waiting in the ready queue at dispatch time
	Blocked   []int           // PIDs blocked at dispatch time
}

// DeviceRecord captures a single device transition.
type DeviceRecord struct {
	Clock  int64
	Device string
	PID    int
	Kind   DeviceEventKind
}

// IdleRecord captures one tick where the ready queue was empty.
type IdleRecord struct {
	Clock   int64 // clock after the tick
	Blocked int   // number of blocked processes during the tick
}
