package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_Capacity_QueuesBeyondSlots(t *testing.T) {
	// GIVEN a device with two slots
	d := NewDevice("disk", 2, 4)

	// WHEN three processes ask for it
	d.start(1)
	d.start(2)
	require.False(t, d.HasFreeSlot())
	d.enqueue(3)

	// THEN two are in service and one waits
	assert.Equal(t, []int{1, 2}, d.Active())
	assert.Equal(t, []int{3}, d.Waiting())
	assert.True(t, d.Holds(3))
	assert.True(t, d.Busy())
}

func TestDevice_Start_BeyondCapacity_Panics(t *testing.T) {
	d := NewDevice("disk", 1, 4)
	d.start(1)
	assert.Panics(t, func() { d.start(2) })
}

func TestDevice_Promote_FIFO(t *testing.T) {
	// GIVEN a full device with waiters [2, 3]
	d := NewDevice("disk", 1, 4)
	d.start(1)
	d.enqueue(2)
	d.enqueue(3)

	// WHEN no slot is free
	_, ok := d.promote()

	// THEN nothing is promoted
	assert.False(t, ok)

	// WHEN the active user leaves
	d.release(1)
	pid, ok := d.promote()

	// THEN the oldest waiter takes the slot
	require.True(t, ok)
	assert.Equal(t, 2, pid)
	assert.Equal(t, []int{2}, d.Active())
	assert.Equal(t, []int{3}, d.Waiting())
}
