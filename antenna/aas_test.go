package antenna_test

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/wiless/coexist/antenna"
	"github.com/wiless/coexist/station"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

var geometries = []antenna.ArrayGeometry{
	{NRows: 1, NCols: 1, DH: 0.5, DV: 0.5},
	{NRows: 8, NCols: 8, DH: 0.5, DV: 0.5},
	{NRows: 4, NCols: 16, DH: 0.7, DV: 0.9},
	{NRows: 3, NCols: 2, DH: 1.25, DV: 0.3},
}

var directions = [][2]float64{
	{0, 0}, {0, 90}, {30, 75}, {-60, 120}, {180, 45}, {-179.5, 10}, {400, -20},
}

func newArray(t *testing.T, g antenna.ArrayGeometry) *antenna.BeamformingArray {
	t.Helper()
	a, err := antenna.NewBeamformingArrayWithElement(g, antenna.Isotropic(0), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestSuperpositionVectorUnitMagnitude(t *testing.T) {
	for _, g := range geometries {
		a := newArray(t, g)
		for _, d := range directions {
			v := a.SuperpositionVector(d[0], d[1])
			r, c := v.Dims()
			if r != g.NRows || c != g.NCols {
				t.Fatalf("dims %dx%d, want %dx%d", r, c, g.NRows, g.NCols)
			}
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					if m := cmplx.Abs(v.At(i, j)); math.Abs(m-1) > 1e-12 {
						t.Errorf("%v %v: |v[%d,%d]| = %v", g, d, i, j, m)
					}
				}
			}
		}
	}
}

func TestWeightVectorPowerNormalized(t *testing.T) {
	for _, g := range geometries {
		a := newArray(t, g)
		for _, d := range directions {
			w := a.WeightVector(d[0], d[1])
			var power float64
			r, c := w.Dims()
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					m := cmplx.Abs(w.At(i, j))
					power += m * m
				}
			}
			if norm := math.Sqrt(power); math.Abs(norm-1) > 1e-12 {
				t.Errorf("%v tilt %v: frobenius norm %v", g, d, norm)
			}
		}
	}
}

func TestWeightVectorFormula(t *testing.T) {
	g := antenna.ArrayGeometry{NRows: 2, NCols: 3, DH: 0.5, DV: 0.8}
	a := newArray(t, g)
	phiT, thetaT := 30.0, 20.0
	w := a.WeightVector(phiT, thetaT)
	v := a.SuperpositionVector(phiT, thetaT)
	for n := 0; n < g.NRows; n++ {
		for m := 0; m < g.NCols; m++ {
			arg := float64(n)*g.DV*math.Sin(antenna.Radian(thetaT)) - float64(m)*g.DH*math.Cos(antenna.Radian(thetaT))*math.Sin(antenna.Radian(phiT))
			want := cmplx.Exp(complex(0, 2*math.Pi*arg)) / complex(math.Sqrt(6), 0)
			if got := w.At(n, m); cmplx.Abs(got-want) > 1e-12 {
				t.Errorf("w[%d,%d] = %v, want %v", n, m, got, want)
			}
		}
	}
	// the weights are not the conjugate of the superposition vector
	if cmplx.Abs(w.At(1, 2)-cmplx.Conj(v.At(1, 2))/complex(math.Sqrt(6), 0)) < 1e-6 {
		t.Error("weight vector collapsed onto conj(superposition vector)")
	}
}

func TestArrayGainSymmetric(t *testing.T) {
	for _, g := range geometries {
		a := newArray(t, g)
		for _, d := range directions {
			v := a.SuperpositionVector(d[0], d[1])
			w := a.WeightVector(d[1]/3, d[0]/2)
			if x, y := antenna.ArrayGain(v, w), antenna.ArrayGain(w, v); x != y && !(math.IsNaN(x) && math.IsNaN(y)) {
				t.Errorf("%v %v: ArrayGain(v,w)=%v ArrayGain(w,v)=%v", g, d, x, y)
			}
		}
	}
}

func TestArrayGainBoresight(t *testing.T) {
	cases := []struct {
		g          antenna.ArrayGeometry
		phi, theta float64
	}{
		// zenith query: only the row term survives, so rows must add in phase
		{antenna.ArrayGeometry{NRows: 1, NCols: 8, DH: 0.5, DV: 0.5}, 0, 0},
		{antenna.ArrayGeometry{NRows: 4, NCols: 4, DH: 0.5, DV: 1.0}, 0, 0},
		// physical boresight of the panel
		{antenna.ArrayGeometry{NRows: 8, NCols: 8, DH: 0.5, DV: 0.5}, 0, 90},
		{antenna.ArrayGeometry{NRows: 4, NCols: 16, DH: 0.7, DV: 0.9}, 0, 90},
	}
	for _, c := range cases {
		a := newArray(t, c.g)
		got := antenna.ArrayGain(a.SuperpositionVector(c.phi, c.theta), a.WeightVector(0, 0))
		want := 10 * math.Log10(float64(c.g.Size()))
		if !scalar.EqualWithinAbs(got, want, 1e-9) {
			t.Errorf("%v at (%v,%v): gain %v, want %v", c.g, c.phi, c.theta, got, want)
		}
	}
}

func TestArrayGainNull(t *testing.T) {
	v := mat.NewCDense(1, 2, []complex128{1, -1})
	w := mat.NewCDense(1, 2, []complex128{1, 1})
	if g := antenna.ArrayGain(v, w); !math.IsInf(g, -1) {
		t.Errorf("gain at exact null = %v, want -Inf", g)
	}
}

func TestArrayGainShapePanics(t *testing.T) {
	defer func() {
		if r := recover(); r != mat.ErrShape {
			t.Errorf("recovered %v, want mat.ErrShape", r)
		}
	}()
	antenna.ArrayGain(mat.NewCDense(2, 2, nil), mat.NewCDense(2, 3, nil))
}

func TestBeamGainIsElementPlusArray(t *testing.T) {
	a, err := antenna.NewBeamformingArray(antenna.NewParameters(), 0, 0, station.IMTBS, station.TX)
	if err != nil {
		t.Fatal(err)
	}
	tilts := [][2]float64{{0, 0}, {15, -10}, {-45, 8}}
	for _, d := range directions {
		for _, tl := range tilts {
			got := a.BeamGain(d[0], d[1], tl[0], tl[1])
			want := a.Element().GainDb(d[0], d[1]) +
				antenna.ArrayGain(a.SuperpositionVector(d[0], d[1]), a.WeightVector(tl[0], tl[1]))
			if got != want && !(math.IsInf(got, -1) && math.IsInf(want, -1)) {
				t.Errorf("BeamGain%v tilt %v = %v, want %v", d, tl, got, want)
			}
		}
	}
}

func TestAddBeamKeepsOrder(t *testing.T) {
	a := newArray(t, geometries[1])
	tilts := [][2]float64{{10, 0}, {-20, 5}, {0, -3}}
	for _, tl := range tilts {
		a.AddBeam(tl[0], tl[1])
	}
	if a.NumBeams() != len(tilts) {
		t.Fatalf("NumBeams = %d", a.NumBeams())
	}
	for i, b := range a.Beams() {
		if b.PhiTilt != tilts[i][0] || b.ThetaTilt != tilts[i][1] {
			t.Errorf("beam %d = (%v,%v), want %v", i, b.PhiTilt, b.ThetaTilt, tilts[i])
		}
		w := b.Weights()
		want := a.WeightVector(tilts[i][0], tilts[i][1])
		if !mat.CEqual(w, want) {
			t.Errorf("beam %d weights differ from WeightVector", i)
		}
		w.Set(0, 0, 42)
	}
	if a.Beams()[0].Weights().At(0, 0) == 42 {
		t.Error("Weights() leaked the stored matrix")
	}
}

func TestCalculateGain(t *testing.T) {
	a, err := antenna.NewBeamformingArray(antenna.NewParameters(), 0, 0, station.IMTBS, station.TX)
	if err != nil {
		t.Fatal(err)
	}
	phi := []float64{0, 20, -35, 60}
	theta := []float64{90, 95, 80, 100}

	if _, err := a.CalculateGain(phi, theta, antenna.GainOptions{}); !errors.Is(err, antenna.ErrNoBeams) {
		t.Fatalf("err = %v, want ErrNoBeams", err)
	}

	tilts := [][2]float64{{0, 0}, {20, -5}, {-35, 10}}
	for _, tl := range tilts {
		a.AddBeam(tl[0], tl[1])
	}

	t.Run("PerBeamMaxZipped", func(t *testing.T) {
		got, err := a.CalculateGain(phi, theta, antenna.GainOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(phi) {
			t.Fatalf("len = %d", len(got))
		}
		for i := range phi {
			best := math.Inf(-1)
			for _, tl := range tilts {
				best = math.Max(best, a.BeamGain(phi[i], theta[i], tl[0], tl[1]))
			}
			if got[i] != best {
				t.Errorf("direction %d: %v, want %v", i, got[i], best)
			}
		}
	})

	t.Run("RequireBeamIndex", func(t *testing.T) {
		for idx, tl := range tilts {
			got, err := a.CalculateGain(phi, theta, antenna.GainOptions{Reduction: antenna.RequireBeamIndex, BeamIndex: idx})
			if err != nil {
				t.Fatal(err)
			}
			for i := range phi {
				if want := a.BeamGain(phi[i], theta[i], tl[0], tl[1]); got[i] != want {
					t.Errorf("beam %d direction %d: %v, want %v", idx, i, got[i], want)
				}
			}
		}
		_, err := a.CalculateGain(phi, theta, antenna.GainOptions{Reduction: antenna.RequireBeamIndex, BeamIndex: 3})
		if !errors.Is(err, antenna.ErrBeamIndex) {
			t.Errorf("err = %v, want ErrBeamIndex", err)
		}
	})

	t.Run("Cartesian", func(t *testing.T) {
		ph := []float64{0, 45}
		th := []float64{60, 90, 120}
		got, err := a.CalculateGain(ph, th, antenna.GainOptions{Pairing: antenna.Cartesian, Reduction: antenna.RequireBeamIndex})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(ph)*len(th) {
			t.Fatalf("len = %d", len(got))
		}
		for i := range ph {
			for j := range th {
				if want := a.BeamGain(ph[i], th[j], 0, 0); got[i*len(th)+j] != want {
					t.Errorf("(%v,%v): %v, want %v", ph[i], th[j], got[i*len(th)+j], want)
				}
			}
		}
	})

	t.Run("ZippedLengthMismatch", func(t *testing.T) {
		_, err := a.CalculateGain(phi, theta[:2], antenna.GainOptions{})
		if !errors.Is(err, antenna.ErrDirectionLength) {
			t.Errorf("err = %v, want ErrDirectionLength", err)
		}
	})
}

func TestToLocal(t *testing.T) {
	a, err := antenna.NewBeamformingArrayWithElement(geometries[1], antenna.Isotropic(0), 60, -10)
	if err != nil {
		t.Fatal(err)
	}
	phi, theta := a.ToLocal(60, -10)
	if !scalar.EqualWithinAbs(phi, 0, 1e-9) || !scalar.EqualWithinAbs(theta, 90, 1e-9) {
		t.Errorf("boresight maps to (%v,%v), want (0,90)", phi, theta)
	}

	flat := newArray(t, geometries[1])
	phi, theta = flat.ToLocal(30, 10)
	if !scalar.EqualWithinAbs(phi, 30, 1e-9) || !scalar.EqualWithinAbs(theta, 80, 1e-9) {
		t.Errorf("ToLocal(30,10) = (%v,%v), want (30,80)", phi, theta)
	}
}

func TestNewBeamformingArrayErrors(t *testing.T) {
	p := antenna.NewParameters()
	if _, err := antenna.NewBeamformingArray(p, 0, 0, station.FSSES, station.RX); err == nil {
		t.Error("expected error for non-IMT station")
	}
	p.BSTx.NRows = 0
	if _, err := antenna.NewBeamformingArray(p, 0, 0, station.IMTBS, station.TX); err == nil {
		t.Error("expected error for empty array")
	}
	if _, err := antenna.NewBeamformingArrayWithElement(geometries[0], nil, 0, 0); err == nil {
		t.Error("expected error for nil element")
	}
	ue, err := antenna.NewBeamformingArray(p, 90, 5, station.IMTUE, station.RX)
	if err != nil {
		t.Fatal(err)
	}
	if ue.NRows() != 4 || ue.NCols() != 4 || ue.DH() != 0.5 || ue.DV() != 0.5 || ue.Azimuth() != 90 || ue.Elevation() != 5 {
		t.Errorf("unexpected UE array %+v", ue.Geometry())
	}
}

func TestGainOptionNames(t *testing.T) {
	cases := map[string]string{
		antenna.PerBeamMax.String():       "PerBeamMax",
		antenna.RequireBeamIndex.String(): "RequireBeamIndex",
		antenna.Zipped.String():           "Zipped",
		antenna.Cartesian.String():        "Cartesian",
		antenna.Reduction(5).String():     "Reduction(5)",
		antenna.Pairing(-1).String():      "Pairing(-1)",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}
