package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ossim/ossim/sim/trace"
)

// IORequest is the I/O decision for one dispatch.
// A zero IORequest (Device == nil) means the dispatch runs its full slice.
type IORequest struct {
	Device *Device
	Offset int64 // CPU ticks that elapse before the request fires
}

// Requested reports whether the dispatch is interrupted by I/O.
func (r IORequest) Requested() bool {
	return r.Device != nil
}

// RandSource is the random stream the IOManager draws from.
// *rand.Rand satisfies it; tests may inject a scripted source.
type RandSource interface {
	Intn(n int) int
	Int63n(n int64) int64
}

// IOManager decides I/O requests and manages device contention.
// It never touches the ready queue: completed processes are handed back to
// the caller of Advance.
//
// Thread-safety: NOT thread-safe. Owned by the scheduler loop.
type IOManager struct {
	devices  []*Device
	rng      RandSource
	procs    map[int]*Process
	assigned map[int]*Device // pid → device it is in service on or waiting for
	trace    *trace.SimulationTrace
}

// NewIOManager creates an IOManager over devices. All random draws come from rng.
// st may be nil.
func NewIOManager(devices []*Device, rng RandSource, st *trace.SimulationTrace) *IOManager {
	if rng == nil {
		panic("NewIOManager: rng must not be nil")
	}
	return &IOManager{
		devices:  devices,
		rng:      rng,
		procs:    make(map[int]*Process),
		assigned: make(map[int]*Device),
		trace:    st,
	}
}

// Devices returns the managed devices in declaration order.
func (m *IOManager) Devices() []*Device {
	return m.devices
}

// RequestsIO draws whether p asks for I/O during this dispatch.
func (m *IOManager) RequestsIO(p *Process) bool {
	if p.RemainingTime <= 0 || p.State == StateFinished {
		return false
	}
	return m.rng.Intn(100) < p.IOChance
}

// RequestOffset draws how many CPU ticks elapse before the request fires,
// uniform in [1, max(slice, 1)].
func (m *IOManager) RequestOffset(slice int64) int64 {
	if slice <= 1 {
		return 1
	}
	return 1 + m.rng.Int63n(slice)
}

// ChooseDevice picks a device uniformly. Returns nil when none are configured.
func (m *IOManager) ChooseDevice() *Device {
	if len(m.devices) == 0 {
		return nil
	}
	return m.devices[m.rng.Intn(len(m.devices))]
}

// Plan decides the I/O behaviour of p for a dispatch of up to quantum ticks.
// The request is voided when there are no devices or when it would fire at or
// after p's natural completion.
func (m *IOManager) Plan(p *Process, quantum int64) IORequest {
	if len(m.devices) == 0 || !m.RequestsIO(p) {
		return IORequest{}
	}
	slice := min(quantum, p.RemainingTime)
	if slice <= 0 {
		return IORequest{}
	}
	offset := m.RequestOffset(slice)
	if p.RemainingTime-offset <= 0 {
		logrus.Debugf("[io] pid %d request at +%d voided, finishes first", p.PID, offset)
		return IORequest{}
	}
	return IORequest{Device: m.ChooseDevice(), Offset: offset}
}

// Admit blocks p on d at time now: it starts service when d has a free slot,
// otherwise it joins d's wait queue. Admitting a process that is already held
// by a device is a no-op and returns false.
func (m *IOManager) Admit(p *Process, d *Device, now int64) bool {
	if held := m.DeviceOf(p.PID); held != nil {
		logrus.Warnf("[io] pid %d already held by device %s, ignoring admission to %s", p.PID, held.Name, d.Name)
		return false
	}
	m.procs[p.PID] = p
	m.assigned[p.PID] = d
	p.State = StateBlocked
	p.IORequests++

	if d.HasFreeSlot() {
		d.start(p.PID)
		p.IOStartTime = now
		logrus.Infof("[io] pid %d started on %s at t=%d", p.PID, d.Name, now)
		m.trace.RecordDevice(trace.DeviceRecord{Clock: now, Device: d.Name, PID: p.PID, Kind: trace.DeviceStart})
	} else {
		d.enqueue(p.PID)
		p.IOStartTime = -1
		logrus.Infof("[io] pid %d waiting for %s at t=%d", p.PID, d.Name, now)
		m.trace.RecordDevice(trace.DeviceRecord{Clock: now, Device: d.Name, PID: p.PID, Kind: trace.DeviceQueue})
	}
	return true
}

// Holds reports whether pid is in service or waiting on any device.
func (m *IOManager) Holds(pid int) bool {
	_, ok := m.assigned[pid]
	return ok
}

// DeviceOf returns the device holding pid, or nil.
func (m *IOManager) DeviceOf(pid int) *Device {
	return m.assigned[pid]
}

// Advance retires every operation that has run for at least the device's
// operation time by now, then promotes waiters into freed slots. elapsed is the
// amount the clock moved since the previous call. Completed processes are
// returned in device order, then service order, with their state left for the
// caller to set.
func (m *IOManager) Advance(elapsed, now int64) []*Process {
	if elapsed < 0 {
		panic(fmt.Sprintf("Advance: negative elapsed %d at t=%d", elapsed, now))
	}
	var completed []*Process
	for _, d := range m.devices {
		// waiters only exist while every slot is taken
		if !d.Busy() {
			continue
		}
		for _, pid := range append([]int(nil), d.active...) {
			p := m.procs[pid]
			if now-p.IOStartTime < d.OperationTime {
				continue
			}
			d.release(pid)
			delete(m.assigned, pid)
			p.IOEndTime = now
			p.TotalIOTime += d.OperationTime
			completed = append(completed, p)
			logrus.Infof("[io] pid %d finished %s at t=%d", pid, d.Name, now)
			m.trace.RecordDevice(trace.DeviceRecord{Clock: now, Device: d.Name, PID: pid, Kind: trace.DeviceComplete})
		}

		for {
			pid, ok := d.promote()
			if !ok {
				break
			}
			m.procs[pid].IOStartTime = now
			logrus.Infof("[io] pid %d started on %s at t=%d", pid, d.Name, now)
			m.trace.RecordDevice(trace.DeviceRecord{Clock: now, Device: d.Name, PID: pid, Kind: trace.DevicePromote})
		}

		if len(d.active) > d.Capacity {
			panic(fmt.Sprintf("device %s: %d active users exceed capacity %d", d.Name, len(d.active), d.Capacity))
		}
	}
	return completed
}
