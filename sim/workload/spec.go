package workload

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ossim/ossim/sim"
)

// SimulationSpec is the YAML form of a simulation file.
type SimulationSpec struct {
	Algorithm            string        `yaml:"algorithm"`
	Quantum              int64         `yaml:"quantum"`
	MemoryPolicy         string        `yaml:"memory_policy"`
	MemorySize           int64         `yaml:"memory_size"`
	PageSize             int64         `yaml:"page_size"`
	AllocationPercentage float64       `yaml:"allocation_percentage"`
	Devices              []DeviceSpec  `yaml:"devices"`
	Processes            []ProcessSpec `yaml:"processes"`
}

// DeviceSpec describes one device.
type DeviceSpec struct {
	Name          string `yaml:"name"`
	Capacity      int    `yaml:"capacity"`
	OperationTime int64  `yaml:"operation_time"`
}

// ProcessSpec describes one process.
type ProcessSpec struct {
	PID           int   `yaml:"pid"`
	CreationTime  int64 `yaml:"creation_time"`
	ExecutionTime int64 `yaml:"execution_time"`
	Priority      int   `yaml:"priority"`
	MemoryNeeded  int64 `yaml:"memory_needed"`
	Pages         []int `yaml:"pages,flow"`
	IOChance      int   `yaml:"io_chance"`
}

// LoadYAML reads and parses a YAML simulation file. Unknown fields are rejected.
func LoadYAML(path string) (*sim.SimulationData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading simulation spec: %w", err)
	}
	var spec SimulationSpec
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing simulation spec: %w", err)
	}
	return spec.ToSimulationData(), nil
}

// Load reads a simulation file, choosing the YAML loader for .yaml/.yml and
// the pipe-delimited loader otherwise.
func Load(path string) (*sim.SimulationData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return LoadPipe(path)
	}
}

// ToSimulationData converts the spec into run input. The device count is
// taken from the device list.
func (s *SimulationSpec) ToSimulationData() *sim.SimulationData {
	data := &sim.SimulationData{
		Config: sim.SimulationConfig{
			Algorithm:            s.Algorithm,
			Quantum:              s.Quantum,
			MemoryPolicy:         s.MemoryPolicy,
			MemorySize:           s.MemorySize,
			PageSize:             s.PageSize,
			AllocationPercentage: s.AllocationPercentage,
			NumDevices:           len(s.Devices),
		},
	}
	for _, d := range s.Devices {
		data.Devices = append(data.Devices, sim.NewDevice(d.Name, d.Capacity, d.OperationTime))
	}
	for _, p := range s.Processes {
		pages := append([]int(nil), p.Pages...)
		data.Processes = append(data.Processes,
			sim.NewProcess(p.PID, p.CreationTime, p.ExecutionTime, p.Priority, p.MemoryNeeded, pages, p.IOChance))
	}
	return data
}

// SpecFromSimulationData converts run input back to its YAML form.
func SpecFromSimulationData(data *sim.SimulationData) *SimulationSpec {
	cfg := data.Config
	spec := &SimulationSpec{
		Algorithm:            cfg.Algorithm,
		Quantum:              cfg.Quantum,
		MemoryPolicy:         cfg.MemoryPolicy,
		MemorySize:           cfg.MemorySize,
		PageSize:             cfg.PageSize,
		AllocationPercentage: cfg.AllocationPercentage,
	}
	for _, d := range data.Devices {
		spec.Devices = append(spec.Devices, DeviceSpec{Name: d.Name, Capacity: d.Capacity, OperationTime: d.OperationTime})
	}
	for _, p := range data.Processes {
		spec.Processes = append(spec.Processes, ProcessSpec{
			PID:           p.PID,
			CreationTime:  p.CreationTime,
			ExecutionTime: p.ExecutionTime,
			Priority:      p.Priority,
			MemoryNeeded:  p.MemoryNeeded,
			Pages:         append([]int(nil), p.PageSequence...),
			IOChance:      p.IOChance,
		})
	}
	return spec
}

// Marshal encodes the spec with two-space indentation.
func (s *SimulationSpec) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding simulation spec: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding simulation spec: %w", err)
	}
	return buf.Bytes(), nil
}
