package board

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat"
)

const (
	// SeriesLength is the number of samples generated per panel.
	SeriesLength = 50

	// maxSampleValue is the exclusive upper bound of generated values.
	maxSampleValue = 5000
)

// Generator produces synthetic sample series.
//
// Labels are "H:MM AM" with hour in [0, 12] and an unpadded minute in
// [0, 59]; the suffix is always "AM". This is a placeholder category axis,
// not a real time series.
//
// Generator is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded from the runtime's random source.
func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededGenerator returns a deterministic Generator for tests and demos.
func NewSeededGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Series returns a fresh [SeriesLength]-point series.
func (g *Generator) Series() []Sample {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Sample, SeriesLength)
	for i := range out {
		out[i] = Sample{
			Label: fmt.Sprintf("%d:%d AM", g.rng.IntN(13), g.rng.IntN(60)),
			Value: g.rng.IntN(maxSampleValue),
		}
	}
	return out
}

// Summary describes the distribution of a series' values.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes a [Summary] of series. An empty series yields the zero
// Summary.
func Summarize(series []Sample) Summary {
	if len(series) == 0 {
		return Summary{}
	}

	values := make([]float64, len(series))
	s := Summary{Count: len(series)}
	for i, sample := range series {
		v := float64(sample.Value)
		values[i] = v
		if i == 0 || v < s.Min {
			s.Min = v
		}
		if i == 0 || v > s.Max {
			s.Max = v
		}
	}

	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		// sample std dev is undefined for one value
		s.StdDev = 0
	}
	return s
}
