package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/ossim/ossim/sim/memory"
)

// Memory policy names. Matching is case-insensitive; anything other than
// "local" selects the global policy.
const (
	MemoryPolicyLocal  = "local"
	MemoryPolicyGlobal = "global"
)

// DefaultMaxIterations bounds the scheduler loop past the latest arrival when
// SafetyConfig leaves it unset. Each idle tick is one iteration.
const DefaultMaxIterations int64 = 10_000_000

// MaxAllocationPercentage is the largest share of a process's pages that can
// be given frames under the local policy.
const MaxAllocationPercentage = 100.0

// SimulationConfig groups the immutable run parameters read from the input file.
type SimulationConfig struct {
	Algorithm            string  // scheduling algorithm name; only round-robin is implemented
	Quantum              int64   // max CPU ticks per dispatch (must be > 0)
	MemoryPolicy         string  // "local" or "global"
	MemorySize           int64   // total physical memory in bytes (global policy)
	PageSize             int64   // bytes per page (must be > 0 when any process has pages)
	AllocationPercentage float64 // share of a process's pages given frames (local policy)
	NumDevices           int     // declared device count; must match the device list
}

// NewSimulationConfig creates a SimulationConfig for a round-robin run.
func NewSimulationConfig(quantum int64, memoryPolicy string, memorySize, pageSize int64, allocationPercentage float64, numDevices int) SimulationConfig {
	return SimulationConfig{
		Algorithm:            "rr",
		Quantum:              quantum,
		MemoryPolicy:         memoryPolicy,
		MemorySize:           memorySize,
		PageSize:             pageSize,
		AllocationPercentage: allocationPercentage,
		NumDevices:           numDevices,
	}
}

// IsLocalPolicy reports whether the memory policy selects per-process frame pools.
func (c SimulationConfig) IsLocalPolicy() bool {
	return strings.EqualFold(strings.TrimSpace(c.MemoryPolicy), MemoryPolicyLocal)
}

// IsRoundRobin reports whether Algorithm names the round-robin scheduler.
// Empty means the default.
func (c SimulationConfig) IsRoundRobin() bool {
	return validAlgorithms[strings.ToLower(strings.TrimSpace(c.Algorithm))]
}

var validAlgorithms = map[string]bool{"": true, "rr": true, "round-robin": true, "roundrobin": true, "round_robin": true}

// SafetyConfig bounds a run against non-terminating inputs.
type SafetyConfig struct {
	MaxIterations int64 // scheduler loop iterations (0 = DefaultMaxIterations past the latest arrival)
	Horizon       int64 // max clock value (0 = unbounded)
}

// iterationCap resolves MaxIterations for processes. The default leaves room
// for the idle ticks spent waiting on the latest arrival.
func (s SafetyConfig) iterationCap(processes []*Process) int64 {
	if s.MaxIterations > 0 {
		return s.MaxIterations
	}
	var latest int64
	for _, p := range processes {
		latest = max(latest, p.CreationTime)
	}
	return DefaultMaxIterations + latest
}

// SimulationData is the full input of one run: configuration, devices and processes
// in declaration order.
type SimulationData struct {
	Config    SimulationConfig
	Devices   []*Device
	Processes []*Process
}

// Clone returns a deep copy so a run never mutates the caller's descriptors.
func (d *SimulationData) Clone() *SimulationData {
	out := &SimulationData{Config: d.Config}
	for _, dev := range d.Devices {
		out.Devices = append(out.Devices, NewDevice(dev.Name, dev.Capacity, dev.OperationTime))
	}
	for _, p := range d.Processes {
		c := p.Clone()
		c.Reset()
		out.Processes = append(out.Processes, c)
	}
	return out
}

// Validate checks configuration, device and process descriptors before a run.
// Every returned error wraps ErrInvalidConfig.
func (d *SimulationData) Validate() error {
	cfg := d.Config
	if cfg.Quantum <= 0 {
		return fmt.Errorf("%w: quantum must be > 0, got %d", ErrInvalidConfig, cfg.Quantum)
	}
	if cfg.NumDevices != len(d.Devices) {
		return fmt.Errorf("%w: config declares %d devices, got %d", ErrInvalidConfig, cfg.NumDevices, len(d.Devices))
	}
	if math.IsNaN(cfg.AllocationPercentage) || cfg.AllocationPercentage < 0 || cfg.AllocationPercentage > MaxAllocationPercentage {
		return fmt.Errorf("%w: allocation percentage must be in [0,%g], got %f",
			ErrInvalidConfig, MaxAllocationPercentage, cfg.AllocationPercentage)
	}
	if cfg.MemorySize < 0 {
		return fmt.Errorf("%w: memory size must be non-negative, got %d", ErrInvalidConfig, cfg.MemorySize)
	}

	names := make(map[string]bool, len(d.Devices))
	for _, dev := range d.Devices {
		if dev.Capacity < 1 {
			return fmt.Errorf("%w: device %q capacity must be >= 1, got %d", ErrInvalidConfig, dev.Name, dev.Capacity)
		}
		if dev.OperationTime < 0 {
			return fmt.Errorf("%w: device %q operation time must be non-negative, got %d", ErrInvalidConfig, dev.Name, dev.OperationTime)
		}
		if names[dev.Name] {
			return fmt.Errorf("%w: duplicate device name %q", ErrInvalidConfig, dev.Name)
		}
		names[dev.Name] = true
	}

	pids := make(map[int]bool, len(d.Processes))
	for _, p := range d.Processes {
		if pids[p.PID] {
			return fmt.Errorf("%w: duplicate pid %d", ErrInvalidConfig, p.PID)
		}
		pids[p.PID] = true
		if p.CreationTime < 0 {
			return fmt.Errorf("%w: pid %d creation time must be non-negative, got %d", ErrInvalidConfig, p.PID, p.CreationTime)
		}
		if p.ExecutionTime < 0 {
			return fmt.Errorf("%w: pid %d execution time must be non-negative, got %d", ErrInvalidConfig, p.PID, p.ExecutionTime)
		}
		if p.IOChance < 0 || p.IOChance > 100 {
			return fmt.Errorf("%w: pid %d io chance must be in [0,100], got %d", ErrInvalidConfig, p.PID, p.IOChance)
		}
		if p.MemoryNeeded < 0 {
			return fmt.Errorf("%w: pid %d memory must be non-negative, got %d", ErrInvalidConfig, p.PID, p.MemoryNeeded)
		}
		if len(p.PageSequence) > 0 && cfg.PageSize <= 0 {
			return fmt.Errorf("%w: page size must be > 0, pid %d has a page sequence", ErrInvalidConfig, p.PID)
		}
		if !cfg.IsLocalPolicy() {
			for _, page := range p.PageSequence {
				if page < 0 || page >= memory.GlobalPageStride {
					return fmt.Errorf("%w: pid %d page %d outside [0,%d) under the global policy",
						ErrInvalidConfig, p.PID, page, memory.GlobalPageStride)
				}
			}
		}
	}
	return nil
}
