// sim/scheduler.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ossim/ossim/sim/trace"
)

// Scheduler is the round-robin CPU scheduler. It owns the clock, the ready
// queue and the process set, and drives the IOManager.
//
// The clock advances once per dispatch by the CPU time the dispatch consumed,
// or by one tick when the ready queue is empty. All time accounting for an
// interval is applied at the point the clock moves.
//
// Thread-safety: NOT thread-safe. Run must be called from a single goroutine.
type Scheduler struct {
	Clock     int64
	Quantum   int64
	ReadyQ    *ReadyQueue
	IO        *IOManager
	Processes []*Process // declaration order; arrival ties break by this order
	Trace     *trace.SimulationTrace

	safety     SafetyConfig
	finished   int
	iterations int64
	maxIters   int64
	dispatches int
	idleTicks  int64
}

// NewScheduler creates a scheduler at clock 0 over processes.
// Panics on a non-positive quantum; configuration is validated before this point.
func NewScheduler(quantum int64, processes []*Process, io *IOManager, safety SafetyConfig, st *trace.SimulationTrace) *Scheduler {
	if quantum <= 0 {
		panic(fmt.Sprintf("NewScheduler: quantum must be > 0, got %d", quantum))
	}
	if io == nil {
		panic("NewScheduler: io must not be nil")
	}
	return &Scheduler{
		Quantum:   quantum,
		ReadyQ:    NewReadyQueue(),
		IO:        io,
		Processes: processes,
		Trace:     st,
		safety:    safety,
		maxIters:  safety.iterationCap(processes),
	}
}

// Done reports whether every process has finished.
func (s *Scheduler) Done() bool {
	return s.finished == len(s.Processes)
}

// Finished returns the number of finished processes.
func (s *Scheduler) Finished() int {
	return s.finished
}

// Dispatches returns the number of CPU dispatches performed so far.
func (s *Scheduler) Dispatches() int {
	return s.dispatches
}

// IdleTicks returns the number of ticks the CPU spent with an empty ready queue.
func (s *Scheduler) IdleTicks() int64 {
	return s.idleTicks
}

// Run steps the simulation until every process has finished or a safety cap
// is breached. A breach returns a *SimulationError wrapping ErrSafetyCapExceeded.
func (s *Scheduler) Run() error {
	logrus.Infof("[tick %07d] Starting round-robin with quantum=%d, %d processes, %d devices",
		s.Clock, s.Quantum, len(s.Processes), len(s.IO.Devices()))
	for !s.Done() {
		if err := s.Step(); err != nil {
			return err
		}
	}
	logrus.Infof("[tick %07d] Simulation ended after %d dispatches", s.Clock, s.dispatches)
	return nil
}

// Step runs one dispatch cycle: admit arrivals, then either dispatch the head
// of the ready queue or spend one idle tick.
func (s *Scheduler) Step() error {
	if s.Done() {
		return nil
	}
	s.iterations++
	if s.iterations > s.maxIters {
		return s.capError(fmt.Sprintf("exceeded %d iterations with %d of %d processes finished",
			s.maxIters, s.finished, len(s.Processes)))
	}
	if s.safety.Horizon > 0 && s.Clock > s.safety.Horizon {
		return s.capError(fmt.Sprintf("clock passed horizon %d with %d of %d processes finished",
			s.safety.Horizon, s.finished, len(s.Processes)))
	}

	s.admitArrivals()

	if s.ReadyQ.Len() == 0 {
		s.idle()
		return nil
	}
	s.dispatch()
	return nil
}

// admitArrivals moves every arrived, never-admitted process to the ready tail
// in declaration order. Time between arrival and admission counts as ready time.
func (s *Scheduler) admitArrivals() {
	for _, p := range s.Processes {
		if p.State != StateNew || p.CreationTime > s.Clock {
			continue
		}
		p.State = StateReady
		p.ReadyTime += s.Clock - p.CreationTime
		s.ReadyQ.Enqueue(p)
		logrus.Infof("<< Arrival: pid %d at %d ticks (created %d)", p.PID, s.Clock, p.CreationTime)
	}
}

func (s *Scheduler) dispatch() {
	p := s.ReadyQ.Dequeue()
	if p.RemainingTime < 0 {
		panic(fmt.Sprintf("dispatch: pid %d has negative remaining time %d", p.PID, p.RemainingTime))
	}
	p.State = StateRunning
	if p.StartTime < 0 {
		p.StartTime = s.Clock
	}
	s.dispatches++

	var record trace.DispatchRecord
	if s.Trace.Enabled() {
		record = trace.DispatchRecord{
			Clock:   s.Clock,
			PID:     p.PID,
			Ready:   s.ReadyQ.PIDs(),
			Blocked: s.blockedPIDs(),
		}
	}

	req := s.IO.Plan(p, s.Quantum)
	elapsed := min(s.Quantum, p.RemainingTime)
	if req.Requested() {
		elapsed = req.Offset
	}
	p.RemainingTime -= elapsed

	// p is still Running here, so it accrues neither ready nor blocked time.
	s.accrue(elapsed)
	s.Clock += elapsed

	switch {
	case req.Requested():
		s.IO.Admit(p, req.Device, s.Clock)
		record.Outcome, record.Device = trace.OutcomeBlocked, req.Device.Name
		logrus.Infof("[tick %07d] pid %d ran %d, blocked on %s (remaining=%d)", s.Clock, p.PID, elapsed, req.Device.Name, p.RemainingTime)
	case p.RemainingTime <= 0:
		p.State = StateFinished
		p.FinishTime = s.Clock
		s.finished++
		record.Outcome = trace.OutcomeFinished
		logrus.Infof("[tick %07d] pid %d ran %d, finished", s.Clock, p.PID, elapsed)
	default:
		p.State = StateReady
		s.ReadyQ.Enqueue(p)
		record.Outcome = trace.OutcomePreempted
		logrus.Infof("[tick %07d] pid %d ran %d, preempted (remaining=%d)", s.Clock, p.PID, elapsed, p.RemainingTime)
	}

	if s.Trace.Enabled() {
		record.Ran = elapsed
		record.Remaining = p.RemainingTime
		s.Trace.RecordDispatch(record)
	}

	s.advanceDevices(elapsed)
}

func (s *Scheduler) idle() {
	blocked := s.accrue(1)
	s.Clock++
	s.idleTicks++
	logrus.Debugf("[tick %07d] CPU idle, %d blocked", s.Clock, blocked)
	s.Trace.RecordIdle(trace.IdleRecord{Clock: s.Clock, Blocked: blocked})
	s.advanceDevices(1)
}

// accrue charges elapsed ticks to every ready and blocked process and returns
// the number of blocked processes.
func (s *Scheduler) accrue(elapsed int64) int {
	blocked := 0
	for _, p := range s.Processes {
		switch p.State {
		case StateReady:
			p.ReadyTime += elapsed
		case StateBlocked:
			p.BlockedTime += elapsed
			blocked++
		}
	}
	return blocked
}

// advanceDevices lets the IOManager retire finished operations, then returns
// the unblocked processes to the ready tail.
func (s *Scheduler) advanceDevices(elapsed int64) {
	for _, p := range s.IO.Advance(elapsed, s.Clock) {
		if p.State != StateBlocked {
			panic(fmt.Sprintf("advanceDevices: pid %d completed I/O in state %s", p.PID, p.State))
		}
		p.State = StateReady
		s.ReadyQ.Enqueue(p)
	}
}

func (s *Scheduler) blockedPIDs() []int {
	pids := make([]int, 0)
	for _, p := range s.Processes {
		if p.State == StateBlocked {
			pids = append(pids, p.PID)
		}
	}
	return pids
}

func (s *Scheduler) capError(detail string) error {
	logrus.Errorf("[tick %07d] %s", s.Clock, detail)
	return &SimulationError{Err: ErrSafetyCapExceeded, Clock: s.Clock, PID: -1, Detail: detail}
}
