package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProcess_Sentinels(t *testing.T) {
	p := NewProcess(4, 2, 9, 1, 100, []int{1}, 10)

	assert.Equal(t, StateNew, p.State)
	assert.Equal(t, int64(9), p.RemainingTime)
	assert.Equal(t, int64(-1), p.StartTime)
	assert.Equal(t, int64(-1), p.FinishTime)
	assert.Equal(t, int64(-1), p.IOStartTime)
	assert.Equal(t, int64(-1), p.IOEndTime)
}

func TestProcess_TurnaroundAndWaiting(t *testing.T) {
	p := NewProcess(1, 3, 5, 0, 0, nil, 0)
	p.FinishTime = 15

	assert.Equal(t, int64(12), p.TurnaroundTime())
	assert.Equal(t, int64(7), p.WaitingTime())
}
