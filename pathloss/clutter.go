package pathloss

import (
	"math"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/coexist/station"
	"gonum.org/v1/gonum/mat"
)

// ClutterModel adds clutter, building and shadowing losses on top of the
// free-space loss, following Fernandes and Linhares, "Coexistence
// conditions of LTE-advanced at 3400-3600 MHz with TVRO at 3625-4200 MHz
// in Brazil", Wireless Networks, 2017.
type ClutterModel struct {
	Environment
	EnvironmentProfile
	BuildingLoss float64

	rng       NormalSource
	freeSpace FreeSpaceLoss
}

// NewClutterModel binds the model to environment ("urban" or "suburban",
// any case). rng is shared and advanced by every shadowed Loss call.
func NewClutterModel(rng NormalSource, environment string) (*ClutterModel, error) {
	env, err := ParseEnvironment(environment)
	if err != nil {
		return nil, err
	}
	m := &ClutterModel{
		Environment:        env,
		EnvironmentProfile: env.Profile(),
		BuildingLoss:       BuildingLoss,
		rng:                rng,
		freeSpace:          NewFreeSpace(),
	}
	log.Debugf("pathloss: clutter model %v d_k=%vkm std=%vdB h_a=%vm", env, m.DK, m.ShadowingStd, m.HA)
	return m, nil
}

// SetFreeSpace replaces the free-space model the clutter loss builds on
func (m *ClutterModel) SetFreeSpace(fs FreeSpaceLoss) {
	m.freeSpace = fs
}

// LossParams is one batch of links: distances in metres, frequencies in
// MHz, heights in metres, indoor flags as 0/1 (see Mask). All matrices
// broadcast against each other. Height comes from ESHeight when
// IMTStationType is set (IMT to other system link) and from UEHeight
// otherwise (IMT to IMT link). A nil Shadowing means shadowing is on.
type LossParams struct {
	Distance3D      mat.Matrix    `mapstructure:"distance_3D"`
	Frequency       mat.Matrix    `mapstructure:"frequency"`
	IndoorStations  mat.Matrix    `mapstructure:"indoor_stations"`
	Shadowing       *bool         `mapstructure:"shadowing"`
	NumberOfSectors int           `mapstructure:"number_of_sectors"`
	IMTStationType  *station.Type `mapstructure:"imt_sta_type"`
	ESHeight        float64       `mapstructure:"es_z"`
	UEHeight        mat.Matrix    `mapstructure:"ue_height"`
}

func (p *LossParams) shadowing() bool {
	return p.Shadowing == nil || *p.Shadowing
}

// height returns the clutter height input and its name
func (p *LossParams) height() (mat.Matrix, string, error) {
	if p.IMTStationType != nil {
		return Scalar(p.ESHeight), "es_z", nil
	}
	if p.UEHeight == nil {
		return nil, "", &ConfigurationError{Key: "ue_height", Reason: "required when imt_sta_type is not given"}
	}
	return p.UEHeight, "ue_height", nil
}

func (p *LossParams) validate() error {
	switch {
	case p.Distance3D == nil:
		return &ConfigurationError{Key: "distance_3D", Reason: "required"}
	case p.Frequency == nil:
		return &ConfigurationError{Key: "frequency", Reason: "required"}
	case p.IndoorStations == nil:
		return &ConfigurationError{Key: "indoor_stations", Reason: "required"}
	case p.NumberOfSectors < 0:
		return &ConfigurationError{Key: "number_of_sectors", Reason: "must not be negative"}
	}
	return nil
}

// ClutterLossDb is the clutter term for one link, frequency in MHz and
// height in metres.
func (m *ClutterModel) ClutterLossDb(freqMHz, height float64) float64 {
	fGHz := freqMHz / 1000
	ffc := 0.25 + 0.375*(1+math.Tanh(7.5*(fGHz-0.5)))
	return 10.25*ffc*math.Exp(-m.DK)*(1-math.Tanh(6*(height/m.HA-0.625))) - 0.33
}

// ClutterLoss evaluates ClutterLossDb over broadcast frequency and height
func (m *ClutterModel) ClutterLoss(frequency, height mat.Matrix) (*mat.Dense, error) {
	r, c, err := broadcast(operand{"frequency", frequency}, operand{"height", height})
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.ClutterLossDb(at(frequency, i, j), at(height, i, j)))
		}
	}
	return out, nil
}

// Loss returns the path loss in dB of every link in p. Links shorter than
// 40 m get no clutter, links up to 10·d_k get a linear share of it and
// longer ones all of it. The result never drops below the free-space loss.
func (m *ClutterModel) Loss(p LossParams) (*mat.Dense, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	height, hname, err := p.height()
	if err != nil {
		return nil, err
	}
	r, c, err := broadcast(
		operand{"distance_3D", p.Distance3D},
		operand{"frequency", p.Frequency},
		operand{"indoor_stations", p.IndoorStations},
		operand{hname, height},
	)
	if err != nil {
		return nil, err
	}

	fsl, err := m.freeSpace.Loss(p.Distance3D, p.Frequency)
	if err != nil {
		return nil, err
	}

	full := 10 * m.DK * 1000 // m
	loss := mat.NewDense(r, c, nil)
	floor := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := at(p.Distance3D, i, j)
			fs := at(fsl, i, j)
			clutter := m.ClutterLossDb(at(p.Frequency, i, j), at(height, i, j))

			l := fs
			switch {
			case d >= 40 && d < full:
				l += clutter * (d/1000 - 0.04) / (10*m.DK - 0.04)
			case d >= full:
				l += clutter
			}
			l += m.BuildingLoss * at(p.IndoorStations, i, j)

			loss.Set(i, j, l)
			floor.Set(i, j, fs)
		}
	}

	if p.shadowing() {
		if m.rng == nil {
			return nil, &ConfigurationError{Key: "shadowing", Reason: "model has no random source"}
		}
		loss.Add(loss, m.rng.Normal(0, m.ShadowingStd, r, c))
	}

	loss.Apply(func(i, j int, v float64) float64 {
		return math.Max(v, floor.At(i, j))
	}, loss)

	if p.NumberOfSectors > 1 {
		loss = repeatColumns(loss, p.NumberOfSectors)
	}
	return loss, nil
}
