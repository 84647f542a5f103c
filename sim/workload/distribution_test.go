package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLengthSampler_ClampsToRange(t *testing.T) {
	specs := []DistSpec{
		{},
		{Type: "uniform"},
		{Type: "gaussian", Params: map[string]float64{"mean": 10, "std_dev": 20}},
		{Type: "exponential", Params: map[string]float64{"mean": 8}},
	}
	for _, spec := range specs {
		t.Run(spec.Type, func(t *testing.T) {
			s, err := NewLengthSampler(spec, 2, 20)
			require.NoError(t, err)
			rng := rand.New(rand.NewSource(3))
			for i := 0; i < 2000; i++ {
				v := s.Sample(rng)
				assert.GreaterOrEqual(t, v, int64(2))
				assert.LessOrEqual(t, v, int64(20))
			}
		})
	}
}

func TestNewLengthSampler_Constant(t *testing.T) {
	s, err := NewLengthSampler(DistSpec{Type: "constant", Params: map[string]float64{"value": 7}}, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(7), s.Sample(rand.New(rand.NewSource(1))))
}

func TestEmpiricalPDFSampler_OnlyDrawsKnownValues(t *testing.T) {
	// GIVEN a PDF over bursts 2 and 9, weighted 3:1, plus a zero-probability bin
	s, err := NewLengthSampler(DistSpec{Type: "empirical", Params: map[string]float64{"2": 3, "9": 1, "50": 0}}, 0, 0)
	require.NoError(t, err)

	// WHEN many bursts are drawn
	rng := rand.New(rand.NewSource(5))
	counts := map[int64]int{}
	for i := 0; i < 4000; i++ {
		counts[s.Sample(rng)]++
	}

	// THEN only positive-probability values appear, roughly in proportion
	assert.Len(t, counts, 2)
	assert.InDelta(t, 3000, counts[2], 200)
}

func TestNewLengthSampler_Errors(t *testing.T) {
	bad := []DistSpec{
		{Type: "pareto"},
		{Type: "gaussian", Params: map[string]float64{"mean": 4}},
		{Type: "constant", Params: map[string]float64{"value": -1}},
		{Type: "empirical", Params: map[string]float64{"x": 1}},
		{Type: "empirical"},
	}
	for _, spec := range bad {
		_, err := NewLengthSampler(spec, 1, 10)
		assert.Error(t, err, "%+v", spec)
	}
}
