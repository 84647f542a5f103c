package workload

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ossim/ossim/sim"
	"github.com/ossim/ossim/sim/memory"
)

// GeneratorConfig parameterizes a synthetic simulation input.
// All ranges are inclusive.
type GeneratorConfig struct {
	Seed                 int64   `yaml:"seed"`
	Quantum              int64   `yaml:"quantum"`
	MemoryPolicy         string  `yaml:"memory_policy"`
	MemorySize           int64   `yaml:"memory_size"`
	PageSize             int64   `yaml:"page_size"`
	AllocationPercentage float64 `yaml:"allocation_percentage"`

	NumDevices      int      `yaml:"num_devices"`
	DeviceCapacity  [2]int   `yaml:"device_capacity,flow"`
	DeviceOpTime    [2]int64 `yaml:"device_op_time,flow"`
	NumProcesses    int      `yaml:"num_processes"`
	ArrivalRange    [2]int64 `yaml:"arrival_range,flow"` // uniform arrivals; the lower bound also starts other processes
	BurstRange      [2]int64 `yaml:"burst_range,flow"`   // bounds every burst distribution except constant and empirical
	MemoryRange     [2]int64 `yaml:"memory_range,flow"`
	PagesPerProcess [2]int   `yaml:"pages_per_process,flow"`
	IOChanceRange   [2]int   `yaml:"io_chance_range,flow"`
	MaxPriority     int      `yaml:"max_priority"`

	Arrival ArrivalSpec `yaml:"arrival"`
	Burst   DistSpec    `yaml:"burst"`
}

// DefaultGeneratorConfig returns a small mixed CPU/I/O workload.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:                 42,
		Quantum:              4,
		MemoryPolicy:         sim.MemoryPolicyLocal,
		MemorySize:           4096,
		PageSize:             256,
		AllocationPercentage: 50,
		NumDevices:           2,
		DeviceCapacity:       [2]int{1, 2},
		DeviceOpTime:         [2]int64{2, 6},
		NumProcesses:         5,
		ArrivalRange:         [2]int64{0, 10},
		BurstRange:           [2]int64{3, 15},
		MemoryRange:          [2]int64{256, 2048},
		PagesPerProcess:      [2]int{4, 12},
		IOChanceRange:        [2]int{0, 40},
		MaxPriority:          5,
	}
}

// Validate checks that every range is ordered and non-negative.
func (c GeneratorConfig) Validate() error {
	if c.Quantum <= 0 {
		return fmt.Errorf("quantum must be > 0, got %d", c.Quantum)
	}
	if c.NumDevices < 0 || c.NumProcesses < 0 {
		return fmt.Errorf("device and process counts must be non-negative, got %d and %d", c.NumDevices, c.NumProcesses)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be > 0, got %d", c.PageSize)
	}
	checks := []struct {
		name   string
		lo, hi int64
	}{
		{"device capacity", int64(c.DeviceCapacity[0]), int64(c.DeviceCapacity[1])},
		{"device operation time", c.DeviceOpTime[0], c.DeviceOpTime[1]},
		{"arrival", c.ArrivalRange[0], c.ArrivalRange[1]},
		{"burst", c.BurstRange[0], c.BurstRange[1]},
		{"memory", c.MemoryRange[0], c.MemoryRange[1]},
		{"pages per process", int64(c.PagesPerProcess[0]), int64(c.PagesPerProcess[1])},
		{"io chance", int64(c.IOChanceRange[0]), int64(c.IOChanceRange[1])},
	}
	for _, ch := range checks {
		if ch.lo < 0 || ch.hi < ch.lo {
			return fmt.Errorf("%s range [%d,%d] must be ordered and non-negative", ch.name, ch.lo, ch.hi)
		}
	}
	if c.DeviceCapacity[0] < 1 && c.NumDevices > 0 {
		return fmt.Errorf("device capacity must be >= 1")
	}
	if math.IsNaN(c.AllocationPercentage) || c.AllocationPercentage < 0 || c.AllocationPercentage > sim.MaxAllocationPercentage {
		return fmt.Errorf("allocation percentage must be in [0,%g], got %f", sim.MaxAllocationPercentage, c.AllocationPercentage)
	}
	if c.MaxPriority < 0 {
		return fmt.Errorf("max priority must be non-negative, got %d", c.MaxPriority)
	}
	if c.IOChanceRange[1] > 100 {
		return fmt.Errorf("io chance must be <= 100, got %d", c.IOChanceRange[1])
	}
	if !IsUniformArrival(c.Arrival) {
		if _, err := NewArrivalSampler(c.Arrival); err != nil {
			return err
		}
	}
	if _, err := NewLengthSampler(c.Burst, c.BurstRange[0], c.BurstRange[1]); err != nil {
		return fmt.Errorf("burst: %w", err)
	}
	return nil
}

// LoadGeneratorConfig reads a YAML generator config. Omitted fields keep
// their DefaultGeneratorConfig values; unknown fields are rejected.
func LoadGeneratorConfig(path string) (GeneratorConfig, error) {
	cfg := DefaultGeneratorConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading generator config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("parsing generator config: %w", err)
	}
	return cfg, nil
}

// Generate builds a simulation input deterministically from cfg.
// Processes get PIDs 1..N in declaration order; page numbers fall within the
// process's own virtual page range. With a poisson or gamma arrival process the
// first process arrives at ArrivalRange[0] and the rest follow by sampled gaps.
func Generate(cfg GeneratorConfig) (*sim.SimulationData, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)).ForSubsystem(sim.SubsystemWorkload)
	bursts, _ := NewLengthSampler(cfg.Burst, cfg.BurstRange[0], cfg.BurstRange[1])
	var arrivals ArrivalSampler
	if !IsUniformArrival(cfg.Arrival) {
		arrivals, _ = NewArrivalSampler(cfg.Arrival)
	}
	nextArrival := cfg.ArrivalRange[0]

	data := &sim.SimulationData{
		Config: sim.SimulationConfig{
			Algorithm:            "rr",
			Quantum:              cfg.Quantum,
			MemoryPolicy:         cfg.MemoryPolicy,
			MemorySize:           cfg.MemorySize,
			PageSize:             cfg.PageSize,
			AllocationPercentage: cfg.AllocationPercentage,
			NumDevices:           cfg.NumDevices,
		},
	}
	for i := 0; i < cfg.NumDevices; i++ {
		data.Devices = append(data.Devices, sim.NewDevice(
			fmt.Sprintf("dev%d", i),
			int(between(rng, int64(cfg.DeviceCapacity[0]), int64(cfg.DeviceCapacity[1]))),
			between(rng, cfg.DeviceOpTime[0], cfg.DeviceOpTime[1]),
		))
	}
	for i := 0; i < cfg.NumProcesses; i++ {
		mem := between(rng, cfg.MemoryRange[0], cfg.MemoryRange[1])
		virtualPages := max((mem+cfg.PageSize-1)/cfg.PageSize, 1)
		virtualPages = min(virtualPages, memory.GlobalPageStride)
		n := int(between(rng, int64(cfg.PagesPerProcess[0]), int64(cfg.PagesPerProcess[1])))
		pages := make([]int, n)
		for j := range pages {
			pages[j] = rng.Intn(int(virtualPages))
		}
		var arrival int64
		if arrivals == nil {
			arrival = between(rng, cfg.ArrivalRange[0], cfg.ArrivalRange[1])
		} else {
			if i > 0 {
				nextArrival += arrivals.SampleIAT(rng)
			}
			arrival = nextArrival
		}
		data.Processes = append(data.Processes, sim.NewProcess(
			i+1,
			arrival,
			bursts.Sample(rng),
			rng.Intn(cfg.MaxPriority+1),
			mem,
			pages,
			int(between(rng, int64(cfg.IOChanceRange[0]), int64(cfg.IOChanceRange[1]))),
		))
	}
	return data, nil
}

func between(rng *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Int63n(hi-lo+1)
}
