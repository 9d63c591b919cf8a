package pathloss

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// RandomState is a seeded random stream shared by the models of one
// simulation. Equal seeds give equal draw sequences. It is not safe for
// concurrent use; the owner serializes calls.
type RandomState struct {
	src rand.Source
}

func NewRandomState(seed uint64) *RandomState {
	return &RandomState{src: rand.NewSource(seed)}
}

// Seed restarts the stream
func (s *RandomState) Seed(seed uint64) {
	s.src.Seed(seed)
}

// Normal draws r x c samples of N(mean, std^2), filled row by row
func (s *RandomState) Normal(mean, std float64, r, c int) *mat.Dense {
	dist := distuv.Normal{Mu: mean, Sigma: std, Src: s.src}
	data := make([]float64, r*c)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(r, c, data)
}

// Uniform draws r x c samples in [low, high)
func (s *RandomState) Uniform(low, high float64, r, c int) *mat.Dense {
	dist := distuv.Uniform{Min: low, Max: high, Src: s.src}
	data := make([]float64, r*c)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(r, c, data)
}
