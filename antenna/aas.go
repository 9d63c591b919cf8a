// Implements a rectangular phased array steered by per-element phase weights
package antenna

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/coexist/station"
	"github.com/wiless/vlib"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoBeams         = errors.New("antenna: no beams added to array")
	ErrBeamIndex       = errors.New("antenna: beam index out of range")
	ErrDirectionLength = errors.New("antenna: phi and theta lengths differ")
)

// ArrayGeometry is an NRows x NCols grid of elements. Rows run along the
// vertical axis and columns along the horizontal one; DH and DV are the
// element spacings over wavelength.
type ArrayGeometry struct {
	NRows, NCols int
	DH, DV       float64
}

// Size returns the number of elements
func (g ArrayGeometry) Size() int {
	return g.NRows * g.NCols
}

func (g ArrayGeometry) Validate() error {
	if g.NRows <= 0 || g.NCols <= 0 {
		return fmt.Errorf("antenna: array needs positive rows and columns, got %dx%d", g.NRows, g.NCols)
	}
	if g.DH <= 0 || g.DV <= 0 {
		return fmt.Errorf("antenna: element spacing must be positive, got dh=%v dv=%v", g.DH, g.DV)
	}
	return nil
}

// Beam is one electrically steered beam and its weight vector
type Beam struct {
	PhiTilt   float64 // degrees
	ThetaTilt float64 // degrees
	weights   *mat.CDense
}

// Weights returns a copy of the beam's weight vector
func (b Beam) Weights() *mat.CDense {
	r, c := b.weights.Dims()
	w := mat.NewCDense(r, c, nil)
	w.Copy(b.weights)
	return w
}

// BeamformingArray combines an element pattern with the array factor of a
// rectangular array. Beams are only appended; configure the array before
// sharing it between goroutines.
type BeamformingArray struct {
	element   ElementPattern
	geometry  ArrayGeometry
	azimuth   float64
	elevation float64
	beams     []Beam
}

// NewBeamformingArray builds the array used by a station of the given role,
// with an ITU-R M.2101 element. azimuth and elevation give the physical
// boresight of the panel.
func NewBeamformingArray(params *Parameters, azimuth, elevation float64, st station.Type, txrx station.TxRx) (*BeamformingArray, error) {
	par, err := params.Get(st, txrx)
	if err != nil {
		return nil, err
	}
	if err := par.Validate(); err != nil {
		return nil, err
	}
	a, err := NewBeamformingArrayWithElement(par.Geometry(), NewElementIMT(par, st, txrx), azimuth, elevation)
	if err != nil {
		return nil, err
	}
	log.Debugf("antenna: %v/%v array %dx%d (dh=%v dv=%v) az=%v el=%v", st, txrx, a.geometry.NRows, a.geometry.NCols, a.geometry.DH, a.geometry.DV, azimuth, elevation)
	return a, nil
}

func NewBeamformingArrayWithElement(g ArrayGeometry, element ElementPattern, azimuth, elevation float64) (*BeamformingArray, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if element == nil {
		return nil, errors.New("antenna: nil element pattern")
	}
	return &BeamformingArray{element: element, geometry: g, azimuth: azimuth, elevation: elevation}, nil
}

func (a *BeamformingArray) Geometry() ArrayGeometry { return a.geometry }
func (a *BeamformingArray) NRows() int { return a.geometry.NRows }
func (a *BeamformingArray) NCols() int { return a.geometry.NCols }
func (a *BeamformingArray) DH() float64 { return a.geometry.DH }
func (a *BeamformingArray) DV() float64 { return a.geometry.DV }
func (a *BeamformingArray) Azimuth() float64 { return a.azimuth }
func (a *BeamformingArray) Elevation() float64 { return a.elevation }
func (a *BeamformingArray) Element() ElementPattern { return a.element }
func (a *BeamformingArray) NumBeams() int { return len(a.beams) }

// Beams returns the beams in the order they were added
func (a *BeamformingArray) Beams() []Beam {
	result := make([]Beam, len(a.beams))
	copy(result, a.beams)
	return result
}

// AddBeam appends a beam steered to (phiTilt, thetaTilt) degrees. Its index
// is the number of beams before the call. phiTilt is the electrical scan
// in azimuth and thetaTilt the electrical down-tilt from the horizon, so
// the beam peaks towards phi = phiTilt, theta = 90 + thetaTilt in the
// zenith-referenced frame of SuperpositionVector.
func (a *BeamformingArray) AddBeam(phiTilt, thetaTilt float64) {
	a.beams = append(a.beams, Beam{
		PhiTilt:   phiTilt,
		ThetaTilt: thetaTilt,
		weights:   a.WeightVector(phiTilt, thetaTilt),
	})
	log.Debugf("antenna: beam %d steered to (%v, %v)", len(a.beams)-1, phiTilt, thetaTilt)
}

// SuperpositionVector returns the phase response of every element to a
// wave in direction (phi, theta) degrees:
//
//	v[n,m] = exp(j2π((n-1)·dv·cos θ + (m-1)·dh·sin θ·sin φ))
func (a *BeamformingArray) SuperpositionVector(phi, theta float64) *mat.CDense {
	rphi, rtheta := Radian(phi), Radian(theta)
	g := a.geometry
	data := make([]complex128, g.Size())
	for n := 0; n < g.NRows; n++ {
		for m := 0; m < g.NCols; m++ {
			arg := float64(n)*g.DV*math.Cos(rtheta) + float64(m)*g.DH*math.Sin(rtheta)*math.Sin(rphi)
			data[n*g.NCols+m] = cmplx.Exp(complex(0, 2*math.Pi*arg))
		}
	}
	return mat.NewCDense(g.NRows, g.NCols, data)
}

// WeightVector returns the normalized steering weights for a beam tilted
// to (phiTilt, thetaTilt) degrees:
//
//	w[n,m] = exp(j2π((n-1)·dv·sin θt - (m-1)·dh·cos θt·sin φt)) / sqrt(N)
//
// The row term uses sin and the column term cos with a minus sign; it is
// not the conjugate of SuperpositionVector. thetaTilt is a down-tilt
// measured from the horizon (0 steers to theta = 90), not a zenith angle.
func (a *BeamformingArray) WeightVector(phiTilt, thetaTilt float64) *mat.CDense {
	rphi, rtheta := Radian(phiTilt), Radian(thetaTilt)
	g := a.geometry
	scale := complex(1/math.Sqrt(float64(g.Size())), 0)
	data := make([]complex128, g.Size())
	for n := 0; n < g.NRows; n++ {
		for m := 0; m < g.NCols; m++ {
			arg := float64(n)*g.DV*math.Sin(rtheta) - float64(m)*g.DH*math.Cos(rtheta)*math.Sin(rphi)
			data[n*g.NCols+m] = scale * cmplx.Exp(complex(0, 2*math.Pi*arg))
		}
	}
	return mat.NewCDense(g.NRows, g.NCols, data)
}

// ArrayGain returns 10·log10(|Σ v·w|²) in dB. An exactly cancelling sum
// gives -Inf. ArrayGain panics with mat.ErrShape if the dimensions differ.
func ArrayGain(v, w mat.CMatrix) float64 {
	r, c := v.Dims()
	if wr, wc := w.Dims(); wr != r || wc != c {
		panic(mat.ErrShape)
	}
	var sum complex128
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sum += v.At(i, j) * w.At(i, j)
		}
	}
	mag := cmplx.Abs(sum)
	return vlib.Db(mag * mag)
}

// BeamGain is the gain in dBi towards (phi, theta) of a beam steered to
// (phiScan, thetaTilt): element gain plus array gain.
func (a *BeamformingArray) BeamGain(phi, theta, phiScan, thetaTilt float64) float64 {
	elementG := a.element.GainDb(phi, theta)
	arrayG := ArrayGain(a.SuperpositionVector(phi, theta), a.WeightVector(phiScan, thetaTilt))
	return elementG + arrayG
}

// Reduction selects how CalculateGain uses the stored beams
type Reduction int

const (
	// PerBeamMax evaluates every stored beam and keeps the best one
	PerBeamMax Reduction = iota
	// RequireBeamIndex evaluates only GainOptions.BeamIndex
	RequireBeamIndex
)

var Reductions = [...]string{"PerBeamMax", "RequireBeamIndex"}

func (r Reduction) String() string {
	if r < 0 || int(r) >= len(Reductions) {
		return fmt.Sprintf("Reduction(%d)", int(r))
	}
	return Reductions[r]
}

// Pairing selects how the phi and theta slices form directions
type Pairing int

const (
	// Zipped pairs phi[i] with theta[i]
	Zipped Pairing = iota
	// Cartesian pairs every phi with every theta, phi-major
	Cartesian
)

var Pairings = [...]string{"Zipped", "Cartesian"}

func (p Pairing) String() string {
	if p < 0 || int(p) >= len(Pairings) {
		return fmt.Sprintf("Pairing(%d)", int(p))
	}
	return Pairings[p]
}

// GainOptions controls CalculateGain. The zero value is PerBeamMax over
// zipped directions.
type GainOptions struct {
	Reduction Reduction
	Pairing   Pairing
	BeamIndex int
}

// CalculateGain returns the gain in dBi towards each direction, resolved
// against the stored beams. With Cartesian pairing the result has
// len(phi)*len(theta) entries and entry i*len(theta)+j is (phi[i], theta[j]).
func (a *BeamformingArray) CalculateGain(phi, theta []float64, opts GainOptions) (vlib.VectorF, error) {
	if len(a.beams) == 0 {
		return nil, ErrNoBeams
	}
	beams := a.beams
	switch opts.Reduction {
	case PerBeamMax:
	case RequireBeamIndex:
		if opts.BeamIndex < 0 || opts.BeamIndex >= len(a.beams) {
			return nil, fmt.Errorf("%w: %d of %d", ErrBeamIndex, opts.BeamIndex, len(a.beams))
		}
		beams = a.beams[opts.BeamIndex : opts.BeamIndex+1]
	default:
		return nil, fmt.Errorf("antenna: unknown reduction %d", opts.Reduction)
	}

	var dirs [][2]float64
	switch opts.Pairing {
	case Zipped:
		if len(phi) != len(theta) {
			return nil, fmt.Errorf("%w: %d != %d", ErrDirectionLength, len(phi), len(theta))
		}
		dirs = make([][2]float64, len(phi))
		for i := range phi {
			dirs[i] = [2]float64{phi[i], theta[i]}
		}
	case Cartesian:
		dirs = make([][2]float64, 0, len(phi)*len(theta))
		for _, p := range phi {
			for _, t := range theta {
				dirs = append(dirs, [2]float64{p, t})
			}
		}
	default:
		return nil, fmt.Errorf("antenna: unknown pairing %d", opts.Pairing)
	}

	result := vlib.NewVectorF(len(dirs))
	perBeam := make([]float64, len(beams))
	for i, d := range dirs {
		elementG := a.element.GainDb(d[0], d[1])
		v := a.SuperpositionVector(d[0], d[1])
		for b := range beams {
			perBeam[b] = ArrayGain(v, beams[b].weights)
		}
		result[i] = elementG + floats.Max(perBeam)
		if math.IsInf(result[i], -1) {
			log.Debugf("antenna: array null towards (%v, %v)", d[0], d[1])
		}
	}
	return result, nil
}

// ToLocal converts a global direction (azimuth, elevation above the
// horizon, degrees) into the array's (phi, theta) by undoing the panel's
// physical azimuth and elevation.
func (a *BeamformingArray) ToLocal(azimuth, elevation float64) (phi, theta float64) {
	az, el := Radian(azimuth), Radian(elevation)
	x := math.Cos(el) * math.Cos(az)
	y := math.Cos(el) * math.Sin(az)
	z := math.Sin(el)

	ra, re := Radian(a.azimuth), Radian(a.elevation)
	x1 := x*math.Cos(ra) + y*math.Sin(ra)
	y1 := -x*math.Sin(ra) + y*math.Cos(ra)
	x2 := x1*math.Cos(re) + z*math.Sin(re)
	z2 := -x1*math.Sin(re) + z*math.Cos(re)

	phi = Degree(math.Atan2(y1, x2))
	theta = Degree(math.Acos(math.Max(-1, math.Min(1, z2))))
	return phi, theta
}
