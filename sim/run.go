package sim

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ossim/ossim/sim/memory"
	"github.com/ossim/ossim/sim/trace"
)

// RunOptions tunes a single run. The zero value is a valid default.
type RunOptions struct {
	Safety      SafetyConfig
	Trace       *trace.SimulationTrace // nil disables event recording
	Replacement string                 // page replacement policy; empty selects FIFO
	Rand        RandSource             // overrides the seeded I/O stream when non-nil
}

// Run validates data, schedules its processes to completion and then runs the
// memory simulation over the same process set. data is not modified.
// On any error no report is returned.
func Run(data *SimulationData, key SimulationKey, opts RunOptions) (*Report, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if !memory.ValidReplacementPolicies[strings.ToLower(opts.Replacement)] {
		return nil, fmt.Errorf("%w: unknown replacement policy %q", ErrInvalidConfig, opts.Replacement)
	}
	if !data.Config.IsRoundRobin() {
		logrus.Warnf("scheduling algorithm %q is not implemented, using round-robin", data.Config.Algorithm)
	}

	run := data.Clone()
	rng := opts.Rand
	if rng == nil {
		rng = NewPartitionedRNG(key).ForSubsystem(SubsystemIO)
	}
	io := NewIOManager(run.Devices, rng, opts.Trace)
	sched := NewScheduler(run.Config.Quantum, run.Processes, io, opts.Safety, opts.Trace)
	if err := sched.Run(); err != nil {
		return nil, err
	}

	mem, err := memory.Simulate(memoryConfig(run.Config, opts.Replacement), memoryReferences(run.Processes))
	if err != nil {
		return nil, fmt.Errorf("%w: memory simulation: %w", ErrInvalidConfig, err)
	}
	return NewReport(key, sched, mem), nil
}

func memoryConfig(cfg SimulationConfig, replacement string) memory.Config {
	return memory.Config{
		Policy:               cfg.MemoryPolicy,
		MemorySize:           cfg.MemorySize,
		PageSize:             cfg.PageSize,
		AllocationPercentage: cfg.AllocationPercentage,
		Replacement:          replacement,
	}
}

func memoryReferences(procs []*Process) []memory.Reference {
	refs := make([]memory.Reference, 0, len(procs))
	for _, p := range procs {
		refs = append(refs, memory.Reference{PID: p.PID, MemoryNeeded: p.MemoryNeeded, Pages: p.PageSequence})
	}
	return refs
}

// SimulateMemory runs only the memory simulation over data.
func SimulateMemory(data *SimulationData, replacement string) (*memory.Result, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return memory.Simulate(memoryConfig(data.Config, replacement), memoryReferences(data.Processes))
}
