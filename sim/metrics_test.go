package sim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ossim/ossim/sim/internal/testutil"
	"github.com/ossim/ossim/sim/memory"
)

func TestNewReport_SortedByPID(t *testing.T) {
	// GIVEN processes declared out of PID order
	procs := []*Process{
		NewProcess(3, 0, 2, 0, 0, nil, 0),
		NewProcess(1, 0, 2, 0, 0, nil, 0),
	}
	s := newTestScheduler(2, procs, nil, &testutil.ScriptedRand{}, nil)
	require.NoError(t, s.Run())

	// WHEN the report is built
	r := NewReport(NewSimulationKey(7), s, nil)

	// THEN rows are ordered by PID
	require.Len(t, r.Processes, 2)
	assert.Equal(t, 1, r.Processes[0].PID)
	assert.Equal(t, 3, r.Processes[1].PID)
	assert.Equal(t, int64(4), r.FinalClock)
	assert.Equal(t, 2, r.Dispatches)
}

func TestReport_Averages(t *testing.T) {
	r := &Report{
		FinalClock: 10,
		IdleTicks:  2,
		Processes: []ProcessMetrics{
			{PID: 1, TurnaroundTime: 4, WaitingTime: 1},
			{PID: 2, TurnaroundTime: 9, WaitingTime: 4},
		},
	}

	assert.InDelta(t, 6.5, r.AverageTurnaround(), 1e-9)
	assert.InDelta(t, 2.5, r.AverageWaiting(), 1e-9)
	assert.InDelta(t, 0.8, r.CPUUtilization(), 1e-9)
}

func TestReport_Empty(t *testing.T) {
	r := &Report{}

	assert.Zero(t, r.AverageTurnaround())
	assert.Zero(t, r.AverageWaiting())
	assert.Zero(t, r.CPUUtilization())

	var buf bytes.Buffer
	r.Print(&buf)
	assert.NotContains(t, buf.String(), "Average")
}

func TestReport_Print_IncludesMemorySection(t *testing.T) {
	r := &Report{
		Quantum:    3,
		FinalClock: 7,
		Processes:  []ProcessMetrics{{PID: 1, ExecutionTime: 7, FinishTime: 7, TurnaroundTime: 7}},
		Memory: &memory.Result{
			Local:             true,
			Replacement:       memory.ReplacementFIFO,
			Processes:         []memory.ProcessResult{{PID: 1, Frames: 2, Faults: 4, Replacements: 2}},
			TotalFaults:       4,
			TotalReplacements: 2,
		},
	}

	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "=== Scheduling Report ==="))
	assert.Contains(t, out, "=== Memory Report ===")
	assert.Contains(t, out, "Policy               : local")
	assert.Contains(t, out, "Total fifo replacements: 2")
}
