// Package sim provides the discrete-time scheduling engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - process.go: Process lifecycle (new → ready → running → blocked/finished) and time accounting
//   - iomanager.go: I/O request decisions, device admission, completion and promotion
//   - scheduler.go: The round-robin loop, clock advancement and ready-queue discipline
//
// # Architecture
//
// The sim package owns the scheduler and device model; supporting pieces live
// in sub-packages:
//   - sim/memory/: Page replacement under local or global frame allocation
//   - sim/trace/: Event trace recording, summaries and SQLite persistence
//   - sim/workload/: Input file parsing (pipe and YAML) and synthetic generation
//
// Run is the single entry point: it validates a SimulationData, schedules a
// private copy of it and then runs the memory simulation over the same
// processes.
//
// # Determinism
//
// Every random decision (I/O request, request offset, device choice) is drawn
// from one stream, PartitionedRNG.ForSubsystem(SubsystemIO), in that order. The
// same input and seed always produce the same report.
package sim
