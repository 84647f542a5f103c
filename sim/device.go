package sim

import (
	"fmt"
	"slices"
)

// Device models one I/O resource with a bounded number of simultaneous users.
// Active holds the PIDs currently being serviced in admission order; Waiting
// is the FIFO of blocked PIDs that found no free slot.
type Device struct {
	Name          string
	Capacity      int   // max simultaneous users (must be >= 1)
	OperationTime int64 // ticks to service one request

	active  []int
	waiting []int
}

// NewDevice creates an idle device.
func NewDevice(name string, capacity int, operationTime int64) *Device {
	return &Device{
		Name:          name,
		Capacity:      capacity,
		OperationTime: operationTime,
	}
}

// Active returns the PIDs currently in service. Callers must not modify it.
func (d *Device) Active() []int {
	return d.active
}

// Waiting returns the PIDs queued for a free slot. Callers must not modify it.
func (d *Device) Waiting() []int {
	return d.waiting
}

// HasFreeSlot reports whether another process can be serviced immediately.
func (d *Device) HasFreeSlot() bool {
	return len(d.active) < d.Capacity
}

// Busy reports whether at least one process is in service.
func (d *Device) Busy() bool {
	return len(d.active) > 0
}

// Holds reports whether pid is in service or waiting on this device.
func (d *Device) Holds(pid int) bool {
	return slices.Contains(d.active, pid) || slices.Contains(d.waiting, pid)
}

func (d *Device) start(pid int) {
	if !d.HasFreeSlot() {
		panic(fmt.Sprintf("device %s: start pid %d beyond capacity %d", d.Name, pid, d.Capacity))
	}
	d.active = append(d.active, pid)
}

func (d *Device) enqueue(pid int) {
	d.waiting = append(d.waiting, pid)
}

func (d *Device) release(pid int) {
	d.active = slices.DeleteFunc(d.active, func(p int) bool { return p == pid })
}

// promote pops the head of the wait queue. ok is false when no waiter or no slot.
func (d *Device) promote() (pid int, ok bool) {
	if len(d.waiting) == 0 || !d.HasFreeSlot() {
		return 0, false
	}
	pid = d.waiting[0]
	d.waiting = d.waiting[1:]
	d.active = append(d.active, pid)
	return pid, true
}

func (d *Device) String() string {
	return fmt.Sprintf("Device: (Name: %s, Capacity: %d, OpTime: %d, Active: %v, Waiting: %v)",
		d.Name, d.Capacity, d.OperationTime, d.active, d.waiting)
}
