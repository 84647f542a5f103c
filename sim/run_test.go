package sim

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ossim/ossim/sim/internal/testutil"
)

func ioHeavyData() *SimulationData {
	return &SimulationData{
		Config:  NewSimulationConfig(3, MemoryPolicyLocal, 4096, 256, 50, 2),
		Devices: []*Device{NewDevice("disk", 1, 4), NewDevice("printer", 2, 6)},
		Processes: []*Process{
			NewProcess(1, 0, 12, 1, 1024, []int{0, 1, 2, 0, 3, 1}, 40),
			NewProcess(2, 1, 8, 0, 512, []int{0, 1, 0, 1}, 70),
			NewProcess(3, 4, 15, 2, 2048, []int{4, 5, 6, 4, 7, 5, 4}, 25),
			NewProcess(4, 4, 3, 0, 256, nil, 90),
		},
	}
}

func TestRun_SameSeed_ByteIdenticalReport(t *testing.T) {
	// GIVEN the same input and seed
	data := ioHeavyData()

	// WHEN it is run twice
	var out1, out2 bytes.Buffer
	r1, err := Run(data, NewSimulationKey(99), RunOptions{})
	require.NoError(t, err)
	r1.Print(&out1)
	r2, err := Run(data, NewSimulationKey(99), RunOptions{})
	require.NoError(t, err)
	r2.Print(&out2)

	// THEN the reports are byte-identical
	assert.Equal(t, out1.String(), out2.String())
	assert.NotEmpty(t, out1.String())
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	data := ioHeavyData()

	_, err := Run(data, NewSimulationKey(1), RunOptions{})
	require.NoError(t, err)

	for _, p := range data.Processes {
		assert.Equal(t, StateNew, p.State)
		assert.Equal(t, p.ExecutionTime, p.RemainingTime)
	}
	for _, d := range data.Devices {
		assert.Empty(t, d.Active())
	}
}

func TestRun_ReportConservation(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		r, err := Run(ioHeavyData(), NewSimulationKey(seed), RunOptions{})
		require.NoError(t, err)
		require.Len(t, r.Processes, 4)
		for _, p := range r.Processes {
			assert.Equal(t, p.ExecutionTime+p.ReadyTime+p.BlockedTime, p.TurnaroundTime, "seed %d pid %d", seed, p.PID)
			assert.GreaterOrEqual(t, p.FinishTime, p.StartTime)
			assert.GreaterOrEqual(t, p.StartTime, p.CreationTime)
		}
	}
}

func TestRun_InjectedRand_ReproducesScenario(t *testing.T) {
	// GIVEN a scripted stream that blocks P1 on disk at t=2
	data := &SimulationData{
		Config:    NewSimulationConfig(3, MemoryPolicyLocal, 1024, 256, 50, 1),
		Devices:   []*Device{NewDevice("disk", 1, 4)},
		Processes: []*Process{NewProcess(1, 0, 5, 0, 0, nil, 50)},
	}
	rng := &testutil.ScriptedRand{Ints: []int{0, 0}, Int63s: []int64{1}}

	// WHEN it is run
	r, err := Run(data, NewSimulationKey(0), RunOptions{Rand: rng})
	require.NoError(t, err)

	// THEN P1 blocks for the device time and finishes after it
	p := r.Processes[0]
	assert.Equal(t, int64(4), p.BlockedTime)
	assert.Equal(t, 1, p.IORequests)
	assert.Equal(t, int64(9), p.FinishTime)
	assert.Equal(t, int64(4), r.IdleTicks)
}

func TestRun_InvalidConfig_NoReport(t *testing.T) {
	data := ioHeavyData()
	data.Config.Quantum = -1

	r, err := Run(data, NewSimulationKey(0), RunOptions{})

	assert.Nil(t, r)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestRun_UnknownReplacement_Rejected(t *testing.T) {
	_, err := Run(ioHeavyData(), NewSimulationKey(0), RunOptions{Replacement: "lru"})

	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRun_UnknownAlgorithm_FallsBackToRoundRobin(t *testing.T) {
	data := ioHeavyData()
	data.Config.Algorithm = "sjf"

	r, err := Run(data, NewSimulationKey(5), RunOptions{})
	require.NoError(t, err)

	want, err := Run(ioHeavyData(), NewSimulationKey(5), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, want.Processes, r.Processes)
}

func TestRun_SafetyCap_NoReport(t *testing.T) {
	r, err := Run(ioHeavyData(), NewSimulationKey(0), RunOptions{Safety: SafetyConfig{MaxIterations: 2}})

	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrSafetyCapExceeded)
}

func TestRun_MemoryReportFollowsPolicy(t *testing.T) {
	// GIVEN the local policy at 50% allocation
	r, err := Run(ioHeavyData(), NewSimulationKey(0), RunOptions{})
	require.NoError(t, err)

	// THEN pid 1 (4 virtual pages) gets 2 frames and pid 4 (no pages) is skipped
	require.NotNil(t, r.Memory)
	assert.True(t, r.Memory.Local)
	require.Len(t, r.Memory.Processes, 3)
	assert.Equal(t, 1, r.Memory.Processes[0].PID)
	assert.Equal(t, 2, r.Memory.Processes[0].Frames)
}

func TestSimulateMemory_Global(t *testing.T) {
	data := ioHeavyData()
	data.Config.MemoryPolicy = MemoryPolicyGlobal

	res, err := SimulateMemory(data, "")
	require.NoError(t, err)

	assert.False(t, res.Local)
	assert.Equal(t, 16, res.TotalFrames)
	assert.Equal(t, 17, res.TotalReferences)
}
