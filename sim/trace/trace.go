// Package trace provides event-stream recording for scheduler and device analysis.
// It has no dependencies on sim/ and stores pure data types.
package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every dispatch, device transition and idle tick.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects event records during a simulation.
// A nil *SimulationTrace is valid and records nothing.
type SimulationTrace struct {
	Config     TraceConfig
	Dispatches []DispatchRecord
	Devices    []DeviceRecord
	Idles      []IdleRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:     config,
		Dispatches: make([]DispatchRecord, 0),
		Devices:    make([]DeviceRecord, 0),
		Idles:      make([]IdleRecord, 0),
	}
}

// Enabled reports whether records are kept.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelEvents
}

// RecordDispatch appends a dispatch record.
func (st *SimulationTrace) RecordDispatch(record DispatchRecord) {
	if !st.Enabled() {
		return
	}
	st.Dispatches = append(st.Dispatches, record)
}

// RecordDevice appends a device transition record.
func (st *SimulationTrace) RecordDevice(record DeviceRecord) {
	if !st.Enabled() {
		return
	}
	st.Devices = append(st.Devices, record)
}

// RecordIdle appends an idle tick record.
func (st *SimulationTrace) RecordIdle(record IdleRecord) {
	if !st.Enabled() {
		return
	}
	st.Idles = append(st.Idles, record)
}
