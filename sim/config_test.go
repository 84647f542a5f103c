package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validData() *SimulationData {
	return &SimulationData{
		Config:  NewSimulationConfig(3, MemoryPolicyLocal, 1024, 256, 50, 1),
		Devices: []*Device{NewDevice("disk", 1, 4)},
		Processes: []*Process{
			NewProcess(1, 0, 7, 0, 512, []int{0, 1, 0}, 20),
			NewProcess(2, 1, 4, 0, 256, []int{0}, 0),
		},
	}
}

func TestSimulationData_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *SimulationData)
	}{
		{"zero quantum", func(d *SimulationData) { d.Config.Quantum = 0 }},
		{"device count mismatch", func(d *SimulationData) { d.Config.NumDevices = 2 }},
		{"negative allocation", func(d *SimulationData) { d.Config.AllocationPercentage = -1 }},
		{"allocation above 100", func(d *SimulationData) { d.Config.AllocationPercentage = 1e300 }},
		{"allocation NaN", func(d *SimulationData) { d.Config.AllocationPercentage = math.NaN() }},
		{"allocation infinite", func(d *SimulationData) { d.Config.AllocationPercentage = math.Inf(1) }},
		{"zero capacity", func(d *SimulationData) { d.Devices[0].Capacity = 0 }},
		{"negative operation time", func(d *SimulationData) { d.Devices[0].OperationTime = -1 }},
		{"duplicate device", func(d *SimulationData) {
			d.Devices = append(d.Devices, NewDevice("disk", 1, 1))
			d.Config.NumDevices = 2
		}},
		{"duplicate pid", func(d *SimulationData) { d.Processes[1].PID = 1 }},
		{"negative creation", func(d *SimulationData) { d.Processes[0].CreationTime = -1 }},
		{"negative burst", func(d *SimulationData) { d.Processes[0].ExecutionTime = -2 }},
		{"io chance above 100", func(d *SimulationData) { d.Processes[0].IOChance = 101 }},
		{"zero page size with pages", func(d *SimulationData) { d.Config.PageSize = 0 }},
		{"global page out of range", func(d *SimulationData) {
			d.Config.MemoryPolicy = MemoryPolicyGlobal
			d.Processes[0].PageSequence = []int{10000}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validData()
			tt.mutate(d)
			err := d.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestSimulationData_Validate_Accepts(t *testing.T) {
	d := validData()
	assert.NoError(t, d.Validate())

	// zero-burst processes and zero-time devices are legal
	d.Processes[0].ExecutionTime = 0
	d.Devices[0].OperationTime = 0
	assert.NoError(t, d.Validate())

	// every frame allocated
	d.Config.AllocationPercentage = MaxAllocationPercentage
	assert.NoError(t, d.Validate())
}

func TestSafetyConfig_IterationCap(t *testing.T) {
	// GIVEN a process arriving after more idle ticks than the default cap
	late := []*Process{
		NewProcess(1, 0, 1, 0, 0, nil, 0),
		NewProcess(2, 2*DefaultMaxIterations, 1, 0, 0, nil, 0),
	}

	// WHEN the cap is left unset THEN it extends past the latest arrival
	assert.Equal(t, 3*DefaultMaxIterations, SafetyConfig{}.iterationCap(late))
	assert.Equal(t, DefaultMaxIterations, SafetyConfig{}.iterationCap(nil))

	// WHEN it is set explicitly THEN it is used as is
	assert.Equal(t, int64(5), SafetyConfig{MaxIterations: 5}.iterationCap(late))
}

func TestSimulationData_Clone_ResetsDynamicState(t *testing.T) {
	// GIVEN data whose process has already run
	d := validData()
	d.Processes[0].State = StateFinished
	d.Processes[0].ReadyTime = 9
	d.Devices[0].start(1)

	// WHEN it is cloned
	c := d.Clone()

	// THEN the clone starts fresh and shares nothing mutable
	assert.Equal(t, StateNew, c.Processes[0].State)
	assert.Equal(t, int64(0), c.Processes[0].ReadyTime)
	assert.Equal(t, int64(7), c.Processes[0].RemainingTime)
	assert.Empty(t, c.Devices[0].Active())
	c.Processes[0].PageSequence[0] = 42
	assert.Equal(t, 0, d.Processes[0].PageSequence[0])
}

func TestSimulationConfig_PolicyAndAlgorithm(t *testing.T) {
	cfg := SimulationConfig{MemoryPolicy: " LOCAL "}
	assert.True(t, cfg.IsLocalPolicy())
	cfg.MemoryPolicy = "shared"
	assert.False(t, cfg.IsLocalPolicy())

	for _, name := range []string{"", "rr", "RR", "round-robin"} {
		assert.True(t, SimulationConfig{Algorithm: name}.IsRoundRobin(), name)
	}
	assert.False(t, SimulationConfig{Algorithm: "fcfs"}.IsRoundRobin())
}
