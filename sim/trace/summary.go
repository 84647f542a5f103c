package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDispatches int
	Preempted       int
	Blocked         int
	Finished        int
	IdleTicks       int
	BusyTicks       int64 // sum of Ran over all dispatches
	DeviceStarts    int   // immediate admissions plus promotions
	DeviceQueued    int
	DeviceCompleted int
	// DeviceUsage maps device name → completed operations.
	DeviceUsage map[string]int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		DeviceUsage: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDispatches = len(st.Dispatches)
	for _, d := range st.Dispatches {
		summary.BusyTicks += d.Ran
		switch d.Outcome {
		case OutcomePreempted:
			summary.Preempted++
		case OutcomeBlocked:
			summary.Blocked++
		case OutcomeFinished:
			summary.Finished++
		}
	}

	for _, r := range st.Devices {
		switch r.Kind {
		case DeviceStart, DevicePromote:
			summary.DeviceStarts++
		case DeviceQueue:
			summary.DeviceQueued++
		case DeviceComplete:
			summary.DeviceCompleted++
			summary.DeviceUsage[r.Device]++
		}
	}

	summary.IdleTicks = len(st.Idles)
	return summary
}
