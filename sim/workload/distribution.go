package workload

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// DistSpec names a burst length distribution and its parameters.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// LengthSampler generates CPU burst lengths in ticks.
type LengthSampler interface {
	// Sample returns a burst within the sampler's bounds.
	Sample(rng *rand.Rand) int64
}

// UniformSampler draws uniformly from [lo, hi].
type UniformSampler struct {
	lo, hi int64
}

func (s *UniformSampler) Sample(rng *rand.Rand) int64 {
	return between(rng, s.lo, s.hi)
}

// GaussianSampler produces clamped Gaussian bursts.
type GaussianSampler struct {
	mean, stdDev float64
	min, max     int64
}

func (s *GaussianSampler) Sample(rng *rand.Rand) int64 {
	if s.min == s.max {
		return s.min
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	return clamp(int64(math.Round(val)), s.min, s.max)
}

// ExponentialSampler produces exponentially-distributed bursts, clamped to
// [min, max]. Most processes are short with an occasional long one.
type ExponentialSampler struct {
	mean     float64
	min, max int64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) int64 {
	val := rng.ExpFloat64() * s.mean
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return s.max
	}
	return clamp(int64(math.Round(val)), s.min, s.max)
}

// EmpiricalPDFSampler samples from an empirical probability distribution
// using inverse CDF via binary search.
type EmpiricalPDFSampler struct {
	values []int64   // Sorted burst values
	cdf    []float64 // Cumulative probabilities (same length as values)
}

// NewEmpiricalPDFSampler creates a sampler from a PDF map (burst → probability).
// Probabilities are normalized if they don't sum to 1.0.
func NewEmpiricalPDFSampler(pdf map[int64]float64) *EmpiricalPDFSampler {
	keys := make([]int64, 0, len(pdf))
	for k := range pdf {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	totalProb := 0.0
	for _, k := range keys {
		if pdf[k] > 0 {
			totalProb += pdf[k]
		}
	}

	values := make([]int64, 0, len(keys))
	cdf := make([]float64, 0, len(keys))
	cumulative := 0.0
	for _, k := range keys {
		p := pdf[k]
		if p <= 0 {
			continue
		}
		cumulative += p / totalProb
		values = append(values, k)
		cdf = append(cdf, cumulative)
	}
	// Ensure last CDF entry is exactly 1.0
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1.0
	}
	return &EmpiricalPDFSampler{values: values, cdf: cdf}
}

func (s *EmpiricalPDFSampler) Sample(rng *rand.Rand) int64 {
	if len(s.values) == 0 {
		return 0
	}
	if len(s.values) == 1 {
		return s.values[0]
	}
	idx := sort.SearchFloat64s(s.cdf, rng.Float64())
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	return s.values[idx]
}

// ConstantSampler always returns the same burst.
type ConstantSampler struct {
	value int64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) int64 {
	return s.value
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewLengthSampler creates a LengthSampler from spec. Gaussian and exponential
// draws are clamped to [lo, hi]; an empty type selects the uniform range.
func NewLengthSampler(spec DistSpec, lo, hi int64) (LengthSampler, error) {
	switch spec.Type {
	case "", "uniform":
		return &UniformSampler{lo: lo, hi: hi}, nil

	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		return &GaussianSampler{mean: spec.Params["mean"], stdDev: spec.Params["std_dev"], min: lo, max: hi}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		return &ExponentialSampler{mean: spec.Params["mean"], min: lo, max: hi}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		v := int64(spec.Params["value"])
		if v < 0 {
			return nil, fmt.Errorf("constant burst must be non-negative, got %d", v)
		}
		return &ConstantSampler{value: v}, nil

	case "empirical":
		// Params keys are burst lengths, values their probabilities
		pdf := make(map[int64]float64, len(spec.Params))
		for k, v := range spec.Params {
			var burst int64
			if _, err := fmt.Sscanf(k, "%d", &burst); err != nil {
				return nil, fmt.Errorf("empirical PDF key %q is not an integer: %w", k, err)
			}
			if burst < 0 {
				return nil, fmt.Errorf("empirical PDF key %d is negative", burst)
			}
			pdf[burst] = v
		}
		s := NewEmpiricalPDFSampler(pdf)
		if len(s.values) == 0 {
			return nil, fmt.Errorf("empirical distribution has no bins with positive probability")
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}

func clamp(v, lo, hi int64) int64 {
	return min(max(v, lo), hi)
}
