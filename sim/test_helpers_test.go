package sim

import (
	"math/rand"

	"github.com/ossim/ossim/sim/trace"
)

// newTestScheduler wires a scheduler over fresh copies of procs and devs.
func newTestScheduler(quantum int64, procs []*Process, devs []*Device, rng RandSource, st *trace.SimulationTrace) *Scheduler {
	io := NewIOManager(devs, rng, st)
	return NewScheduler(quantum, procs, io, SafetyConfig{}, st)
}

func eventTrace() *trace.SimulationTrace {
	return trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})
}

// testRandomWorkload builds n processes and d devices from seed.
func testRandomWorkload(seed int64, n, d int) ([]*Process, []*Device) {
	rng := rand.New(rand.NewSource(seed))
	var devs []*Device
	for i := 0; i < d; i++ {
		devs = append(devs, NewDevice(string(rune('A'+i)), 1+rng.Intn(2), int64(rng.Intn(7))))
	}
	var procs []*Process
	for i := 0; i < n; i++ {
		procs = append(procs, NewProcess(i+1, int64(rng.Intn(20)), int64(rng.Intn(15)), 0, 0, nil, rng.Intn(101)))
	}
	return procs, devs
}

func dispatchRuns(st *trace.SimulationTrace) []int64 {
	runs := make([]int64, len(st.Dispatches))
	for i, d := range st.Dispatches {
		runs[i] = d.Ran
	}
	return runs
}
