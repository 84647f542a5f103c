// Implements the ReadyQueue, which holds all processes waiting for the CPU.
// Processes are enqueued on arrival, on preemption and on I/O completion.

package sim

import (
	"fmt"
	"strings"
)

// ReadyQueue represents a FIFO queue of processes waiting to be dispatched.
// Membership is tracked by PID so the same process is never queued twice.
type ReadyQueue struct {
	queue   []*Process
	members map[int]bool
}

// NewReadyQueue creates an empty ready queue.
func NewReadyQueue() *ReadyQueue {
	return &ReadyQueue{members: make(map[int]bool)}
}

// Enqueue adds a process to the back of the ready queue. It returns false,
// leaving the queue unchanged, when the process is already queued.
func (rq *ReadyQueue) Enqueue(p *Process) bool {
	if p == nil {
		panic("Enqueue: process must not be nil")
	}
	if rq.members[p.PID] {
		return false
	}
	rq.members[p.PID] = true
	rq.queue = append(rq.queue, p)
	return true
}

// Dequeue removes and returns the process at the front, or nil when empty.
func (rq *ReadyQueue) Dequeue() *Process {
	if len(rq.queue) == 0 {
		return nil
	}
	p := rq.queue[0]
	rq.queue = rq.queue[1:]
	delete(rq.members, p.PID)
	return p
}

// Peek returns the process at the front without removing it.
// Returns nil if the queue is empty.
func (rq *ReadyQueue) Peek() *Process {
	if len(rq.queue) == 0 {
		return nil
	}
	return rq.queue[0]
}

// Contains reports whether pid is queued.
func (rq *ReadyQueue) Contains(pid int) bool {
	return rq.members[pid]
}

// Len returns the number of processes in the queue.
func (rq *ReadyQueue) Len() int {
	return len(rq.queue)
}

// PIDs returns the queued PIDs in dispatch order.
func (rq *ReadyQueue) PIDs() []int {
	pids := make([]int, len(rq.queue))
	for i, p := range rq.queue {
		pids[i] = p.PID
	}
	return pids
}

func (rq *ReadyQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range rq.queue {
		sb.WriteString(fmt.Sprint(p.PID))
		if i < len(rq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
