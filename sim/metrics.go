// Tracks per-process timing and run-wide results for final reporting.

package sim

import (
	"fmt"
	"io"
	"slices"

	"github.com/ossim/ossim/sim/memory"
)

// ProcessMetrics is the post-run accounting of one process.
type ProcessMetrics struct {
	PID            int
	Priority       int
	CreationTime   int64
	ExecutionTime  int64
	StartTime      int64
	FinishTime     int64
	ReadyTime      int64
	BlockedTime    int64
	TotalIOTime    int64
	IORequests     int
	TurnaroundTime int64 // FinishTime - CreationTime
	WaitingTime    int64 // TurnaroundTime - ExecutionTime
}

// NewProcessMetrics snapshots a finished process.
func NewProcessMetrics(p *Process) ProcessMetrics {
	return ProcessMetrics{
		PID:            p.PID,
		Priority:       p.Priority,
		CreationTime:   p.CreationTime,
		ExecutionTime:  p.ExecutionTime,
		StartTime:      p.StartTime,
		FinishTime:     p.FinishTime,
		ReadyTime:      p.ReadyTime,
		BlockedTime:    p.BlockedTime,
		TotalIOTime:    p.TotalIOTime,
		IORequests:     p.IORequests,
		TurnaroundTime: p.TurnaroundTime(),
		WaitingTime:    p.WaitingTime(),
	}
}

// Report aggregates the results of one run.
type Report struct {
	Key        SimulationKey
	Quantum    int64
	FinalClock int64
	Dispatches int
	IdleTicks  int64
	Processes  []ProcessMetrics // sorted by PID
	Memory     *memory.Result
}

// NewReport builds a report from the scheduler's final state.
func NewReport(key SimulationKey, s *Scheduler, mem *memory.Result) *Report {
	r := &Report{
		Key:        key,
		Quantum:    s.Quantum,
		FinalClock: s.Clock,
		Dispatches: s.Dispatches(),
		IdleTicks:  s.IdleTicks(),
		Memory:     mem,
	}
	for _, p := range s.Processes {
		r.Processes = append(r.Processes, NewProcessMetrics(p))
	}
	slices.SortFunc(r.Processes, func(a, b ProcessMetrics) int { return a.PID - b.PID })
	return r
}

// AverageTurnaround returns the mean turnaround time, 0 for an empty report.
func (r *Report) AverageTurnaround() float64 {
	if len(r.Processes) == 0 {
		return 0
	}
	var sum int64
	for _, p := range r.Processes {
		sum += p.TurnaroundTime
	}
	return float64(sum) / float64(len(r.Processes))
}

// AverageWaiting returns the mean waiting time, 0 for an empty report.
func (r *Report) AverageWaiting() float64 {
	if len(r.Processes) == 0 {
		return 0
	}
	var sum int64
	for _, p := range r.Processes {
		sum += p.WaitingTime
	}
	return float64(sum) / float64(len(r.Processes))
}

// CPUUtilization is the fraction of the run the CPU was not idle.
func (r *Report) CPUUtilization() float64 {
	if r.FinalClock == 0 {
		return 0
	}
	return float64(r.FinalClock-r.IdleTicks) / float64(r.FinalClock)
}

// Print writes the final report. Output depends only on the report's contents.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Scheduling Report ===")
	fmt.Fprintf(w, "Seed                 : %d\n", int64(r.Key))
	fmt.Fprintf(w, "Quantum              : %d\n", r.Quantum)
	fmt.Fprintf(w, "Final Clock          : %d\n", r.FinalClock)
	fmt.Fprintf(w, "Dispatches           : %d\n", r.Dispatches)
	fmt.Fprintf(w, "Idle Ticks           : %d\n", r.IdleTicks)
	fmt.Fprintf(w, "CPU Utilization      : %.2f%%\n", r.CPUUtilization()*100)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-6s %-10s %-8s %-8s %-8s %-10s %-8s %-8s %-8s %-8s\n",
		"PID", "Creation", "Burst", "Start", "Finish", "Turnaround", "Ready", "Blocked", "TotalIO", "Waiting")
	for _, p := range r.Processes {
		fmt.Fprintf(w, "%-6d %-10d %-8d %-8d %-8d %-10d %-8d %-8d %-8d %-8d\n",
			p.PID, p.CreationTime, p.ExecutionTime, p.StartTime, p.FinishTime,
			p.TurnaroundTime, p.ReadyTime, p.BlockedTime, p.TotalIOTime, p.WaitingTime)
	}
	if len(r.Processes) > 0 {
		fmt.Fprintf(w, "Average Turnaround   : %.2f ticks\n", r.AverageTurnaround())
		fmt.Fprintf(w, "Average Waiting      : %.2f ticks\n", r.AverageWaiting())
	}

	if r.Memory == nil {
		return
	}
	fmt.Fprintln(w)
	PrintMemoryReport(w, r.Memory)
}

// PrintMemoryReport writes the paging section of the report.
func PrintMemoryReport(w io.Writer, m *memory.Result) {
	fmt.Fprintln(w, "=== Memory Report ===")
	if m.Local {
		fmt.Fprintln(w, "Policy               : local")
		for _, p := range m.Processes {
			fmt.Fprintf(w, "PID %-6d frames=%-4d faults=%-4d %s replacements=%d\n",
				p.PID, p.Frames, p.Faults, m.Replacement, p.Replacements)
		}
	} else {
		fmt.Fprintln(w, "Policy               : global")
		fmt.Fprintf(w, "Frames               : %d\n", m.TotalFrames)
	}
	fmt.Fprintf(w, "Page Faults          : %d\n", m.TotalFaults)
	fmt.Fprintf(w, "Total %s replacements: %d\n", m.Replacement, m.TotalReplacements)
}
