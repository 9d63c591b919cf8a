package antenna

import (
	"math"

	"github.com/wiless/coexist/station"
)

// Wrap0To180 folds the input angle into 0 to 180
func Wrap0To180(degree float64) float64 {
	if degree >= 0 && degree <= 180 {
		return degree
	}
	degree = math.Abs(math.Mod(degree, 360))
	if degree > 180 {
		degree = 360 - degree
	}
	return degree
}

// Wrap180To180 wraps the input angle to -180 to 180
func Wrap180To180(degree float64) float64 {
	if degree >= -180 && degree <= 180 {
		return degree
	}
	degree = math.Mod(degree+180, 360)
	if degree < 0 {
		degree += 360
	}
	return degree - 180
}

func Radian(degree float64) float64 {
	return degree * math.Pi / 180.0
}

func Degree(radian float64) float64 {
	return radian * 180.0 / math.Pi
}

// ElementPattern is the radiation pattern of a single array element.
// phi is the azimuth and theta the angle from zenith, both in degrees,
// so boresight is (0, 90).
type ElementPattern interface {
	GainDb(phi, theta float64) float64
}

// ElementIMT is the IMT antenna element of Recommendation ITU-R M.2101
type ElementIMT struct {
	ElementParams
	StationType station.Type
	Mode        station.TxRx
}

func NewElementIMT(p ElementParams, st station.Type, txrx station.TxRx) *ElementIMT {
	return &ElementIMT{ElementParams: p, StationType: st, Mode: txrx}
}

// HorizontalPatternDb returns A_h(phi) in dB
func (e *ElementIMT) HorizontalPatternDb(phi float64) float64 {
	phi = Wrap180To180(phi)
	return -math.Min(12.0*math.Pow(phi/e.Phi3dB, 2.0), e.Am)
}

// VerticalPatternDb returns A_v(theta) in dB
func (e *ElementIMT) VerticalPatternDb(theta float64) float64 {
	theta = Wrap0To180(theta)
	return -math.Min(12.0*math.Pow((theta-90.0)/e.Theta3dB, 2.0), e.SLAv)
}

// GainDb returns the element gain in dBi towards (phi, theta)
func (e *ElementIMT) GainDb(phi, theta float64) float64 {
	ah := e.HorizontalPatternDb(phi)
	av := e.VerticalPatternDb(theta)
	return e.Gain - math.Min(-(ah+av), e.Am)
}

// Isotropic is an element radiating the same gain in every direction
type Isotropic float64

func (g Isotropic) GainDb(phi, theta float64) float64 {
	return float64(g)
}
