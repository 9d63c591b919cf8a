package pathloss

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// FreeSpace is the free-space path loss
//
//	L = 20 log10(d) + 20 log10(f) - 27.55
//
// with d in metres and f in MHz.
type FreeSpace struct{}

func NewFreeSpace() *FreeSpace {
	return &FreeSpace{}
}

func (fs *FreeSpace) Loss(distance3D, frequency mat.Matrix) (*mat.Dense, error) {
	r, c, err := broadcast(operand{"distance_3D", distance3D}, operand{"frequency", frequency})
	if err != nil {
		return nil, err
	}
	loss := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			loss.Set(i, j, LossInDb(at(distance3D, i, j), at(frequency, i, j)))
		}
	}
	return loss, nil
}

// LossInDb is the free-space loss of a single link
func LossInDb(distance, freqMHz float64) float64 {
	return 20*math.Log10(distance) + 20*math.Log10(freqMHz) - 27.55
}
