package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFrames(t *testing.T) {
	tests := []struct {
		name     string
		mem      int64
		pageSize int64
		pct      float64
		want     int
	}{
		{"half of four pages", 1024, 256, 50, 2},
		{"partial page rounds up", 1000, 256, 100, 4},
		{"floor of fraction", 768, 256, 50, 1},
		{"zero allocation clamps to one", 1024, 256, 0, 1},
		{"zero memory clamps to one", 0, 256, 50, 1},
		{"invalid page size", 1024, 0, 50, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocalFrames(tt.mem, tt.pageSize, tt.pct))
		})
	}
}

func TestGlobalFrames(t *testing.T) {
	assert.Equal(t, 4, GlobalFrames(1024, 256))
	assert.Equal(t, 1, GlobalFrames(100, 256))
	assert.Equal(t, 1, GlobalFrames(1024, 0))
}

func TestSimulate_Global_PagesNeverAlias(t *testing.T) {
	// GIVEN two processes that both reference page 5 in a one-frame pool
	cfg := Config{Policy: "global", MemorySize: 256, PageSize: 256}
	refs := []Reference{
		{PID: 1, Pages: []int{5}},
		{PID: 2, Pages: []int{5}},
	}

	// WHEN the global simulation runs
	res, err := Simulate(cfg, refs)
	require.NoError(t, err)

	// THEN they are distinct pages: both fault and the second evicts the first
	assert.NotEqual(t, EncodeGlobal(1, 5), EncodeGlobal(2, 5))
	assert.Equal(t, 10005, EncodeGlobal(1, 5))
	assert.Equal(t, 2, res.TotalFaults)
	assert.Equal(t, 1, res.TotalReplacements)
	assert.Equal(t, ReplacementFIFO, res.Replacement)
}

func TestSimulate_Global_OutOfRangePage(t *testing.T) {
	cfg := Config{Policy: "global", MemorySize: 1024, PageSize: 256}

	_, err := Simulate(cfg, []Reference{{PID: 1, Pages: []int{GlobalPageStride}}})

	assert.Error(t, err)
}

func TestSimulate_Local_PerProcessPools(t *testing.T) {
	// GIVEN two processes with two frames each under the local policy
	cfg := Config{Policy: "Local", PageSize: 256, AllocationPercentage: 50}
	refs := []Reference{
		{PID: 1, MemoryNeeded: 1024, Pages: []int{1, 2, 3, 1}},
		{PID: 2, MemoryNeeded: 1024, Pages: []int{1, 2, 1, 2}},
		{PID: 3, MemoryNeeded: 1024},
	}

	// WHEN the local simulation runs
	res, err := Simulate(cfg, refs)
	require.NoError(t, err)

	// THEN each process replays against its own pool and empty streams are skipped
	require.Len(t, res.Processes, 2)
	assert.Equal(t, 2, res.Processes[0].Replacements)
	assert.Equal(t, 0, res.Processes[1].Replacements)
	assert.Equal(t, 2, res.TotalReplacements)
	assert.Equal(t, 6, res.TotalFaults)
	assert.Equal(t, 4, res.TotalFrames)
}

func TestSimulate_UnknownReplacement(t *testing.T) {
	_, err := Simulate(Config{Policy: "local", PageSize: 256, Replacement: "clock"}, nil)

	assert.Error(t, err)
}
