package antenna

import (
	"encoding/json"
	"fmt"

	ms "github.com/mitchellh/mapstructure"
	"github.com/wiless/coexist/station"
)

// ElementParams describes one IMT antenna: its element pattern and the
// rectangular array built from it. Spacings are in wavelengths (d/lambda).
type ElementParams struct {
	Gain     float64 `mapstructure:"element_max_g" json:"element_max_g"`
	Phi3dB   float64 `mapstructure:"element_phi_3db" json:"element_phi_3db"`
	Theta3dB float64 `mapstructure:"element_theta_3db" json:"element_theta_3db"`
	Am       float64 `mapstructure:"element_am" json:"element_am"` // front-to-back ratio
	SLAv     float64 `mapstructure:"element_sla_v" json:"element_sla_v"`
	NRows    int     `mapstructure:"n_rows" json:"n_rows"`
	NColumns int     `mapstructure:"n_columns" json:"n_columns"`
	HSpacing float64 `mapstructure:"element_horiz_spacing" json:"element_horiz_spacing"`
	VSpacing float64 `mapstructure:"element_vert_spacing" json:"element_vert_spacing"`
}

// Geometry returns the array geometry described by p
func (p ElementParams) Geometry() ArrayGeometry {
	return ArrayGeometry{NRows: p.NRows, NCols: p.NColumns, DH: p.HSpacing, DV: p.VSpacing}
}

func (p ElementParams) Validate() error {
	if p.Phi3dB <= 0 || p.Theta3dB <= 0 {
		return fmt.Errorf("antenna: 3dB beamwidths must be positive (phi=%v theta=%v)", p.Phi3dB, p.Theta3dB)
	}
	return p.Geometry().Validate()
}

// Parameters holds the antenna settings of the IMT BS and UE, for
// transmission and reception.
type Parameters struct {
	BSTx ElementParams `mapstructure:"bs_tx" json:"bs_tx"`
	BSRx ElementParams `mapstructure:"bs_rx" json:"bs_rx"`
	UETx ElementParams `mapstructure:"ue_tx" json:"ue_tx"`
	UERx ElementParams `mapstructure:"ue_rx" json:"ue_rx"`
}

func (p *Parameters) SetDefault() {
	bs := ElementParams{
		Gain:     5,
		Phi3dB:   65,
		Theta3dB: 65,
		Am:       30,
		SLAv:     30,
		NRows:    8,
		NColumns: 8,
		HSpacing: 0.5,
		VSpacing: 0.5,
	}
	ue := ElementParams{
		Gain:     5,
		Phi3dB:   90,
		Theta3dB: 90,
		Am:       25,
		SLAv:     25,
		NRows:    4,
		NColumns: 4,
		HSpacing: 0.5,
		VSpacing: 0.5,
	}
	p.BSTx, p.BSRx = bs, bs
	p.UETx, p.UERx = ue, ue
}

func NewParameters() *Parameters {
	result := new(Parameters)
	result.SetDefault()
	return result
}

// Get returns the settings used by an antenna of the given role
func (p *Parameters) Get(st station.Type, txrx station.TxRx) (ElementParams, error) {
	switch {
	case st == station.IMTBS && txrx == station.TX:
		return p.BSTx, nil
	case st == station.IMTBS && txrx == station.RX:
		return p.BSRx, nil
	case st == station.IMTUE && txrx == station.TX:
		return p.UETx, nil
	case st == station.IMTUE && txrx == station.RX:
		return p.UERx, nil
	}
	return ElementParams{}, fmt.Errorf("antenna: no IMT antenna parameters for %v/%v", st, txrx)
}

// Decode overlays the values found in input on p. Keys follow the
// mapstructure tags, e.g. {"bs_tx": {"n_rows": 4}}.
func (p *Parameters) Decode(input map[string]interface{}) error {
	dec, err := ms.NewDecoder(&ms.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           p,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("antenna: decoding parameters: %w", err)
	}
	return nil
}

// Set reads a JSON document into p
func (p *Parameters) Set(str string) error {
	return json.Unmarshal([]byte(str), p)
}

func (p *Parameters) Validate() error {
	for _, s := range []struct {
		name string
		ep   ElementParams
	}{{"bs_tx", p.BSTx}, {"bs_rx", p.BSRx}, {"ue_tx", p.UETx}, {"ue_rx", p.UERx}} {
		if err := s.ep.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
