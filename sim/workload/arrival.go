package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ArrivalSpec selects how generated processes arrive.
type ArrivalSpec struct {
	Process string  `yaml:"process"`            // "uniform" (default), "poisson" or "gamma"
	MeanIAT float64 `yaml:"mean_iat,omitempty"` // mean inter-arrival time in ticks
	CV      float64 `yaml:"cv,omitempty"`       // coefficient of variation (gamma only)
}

// ArrivalSampler generates inter-arrival times.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time in ticks.
	// Zero is valid: several processes may arrive on the same tick.
	SampleIAT(rng *rand.Rand) int64
}

// PoissonSampler generates exponentially-distributed inter-arrival times (CV=1).
type PoissonSampler struct {
	meanIAT float64
}

func (s *PoissonSampler) SampleIAT(rng *rand.Rand) int64 {
	return int64(rng.ExpFloat64() * s.meanIAT)
}

// GammaSampler generates Gamma-distributed inter-arrival times.
// CV > 1 produces bursty arrivals that stress the ready queue.
// Implemented using Marsaglia-Tsang's method for shape >= 1,
// with transformation for shape < 1.
type GammaSampler struct {
	shape float64 // 1/CV² (alpha parameter)
	scale float64 // mean * CV² in ticks (beta parameter)
}

func (s *GammaSampler) SampleIAT(rng *rand.Rand) int64 {
	sample := gammaRand(rng, s.shape, s.scale)
	if math.IsInf(sample, 0) || math.IsNaN(sample) || sample < 0 {
		return 0
	}
	return int64(sample)
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape >= 1: direct method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// NewArrivalSampler creates an ArrivalSampler for a non-uniform arrival process.
func NewArrivalSampler(spec ArrivalSpec) (ArrivalSampler, error) {
	if spec.MeanIAT < 0 {
		return nil, fmt.Errorf("mean inter-arrival time must be non-negative, got %f", spec.MeanIAT)
	}
	switch spec.Process {
	case "poisson":
		return &PoissonSampler{meanIAT: spec.MeanIAT}, nil

	case "gamma":
		cv := spec.CV
		if cv <= 0 {
			cv = 1.0
		}
		// shape = 1/CV², scale = mean * CV²
		shape := 1.0 / (cv * cv)
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to Poisson", shape, cv)
			return &PoissonSampler{meanIAT: spec.MeanIAT}, nil
		}
		return &GammaSampler{shape: shape, scale: spec.MeanIAT * cv * cv}, nil

	default:
		return nil, fmt.Errorf("unknown arrival process %q", spec.Process)
	}
}

// IsUniformArrival reports whether spec draws each arrival independently from
// the generator's arrival range rather than from an inter-arrival process.
func IsUniformArrival(spec ArrivalSpec) bool {
	return spec.Process == "" || spec.Process == "uniform"
}
