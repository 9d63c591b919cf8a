// Package coexist ties the antenna and propagation models together into
// single-link coupling-loss and interference figures.
package coexist

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/coexist/antenna"
	"github.com/wiless/coexist/pathloss"
	"github.com/wiless/vlib"
)

// NoisePSDdBmPerHz is the thermal noise density at 290 K
const NoisePSDdBmPerHz = -173.9

// Link is one interfering path between a transmitter and a victim
// receiver. Azimuth and Elevation give the receiver as seen from the
// transmitter, in degrees, elevation above the horizon.
type Link struct {
	Tx, Rx     vlib.Location3D
	Distance3D float64 // m
	Azimuth    float64
	Elevation  float64

	FreqMHz      float64
	BandwidthMHz float64
	N0           float64 // dBm over the bandwidth
	Indoor       bool
}

// NewLink derives distance and direction from the two positions
func NewLink(tx, rx vlib.Location3D) *Link {
	d3d, az, el := vlib.RelativeGeo(tx, rx)
	return &Link{
		Tx:         tx,
		Rx:         rx,
		Distance3D: d3d,
		Azimuth:    az,
		Elevation:  el,
	}
}

// SetParams sets the carrier and the victim bandwidth, and with it N0
func (l *Link) SetParams(freqMHz, bwMHz float64) {
	l.FreqMHz = freqMHz
	l.BandwidthMHz = bwMHz
	l.N0 = NoisePSDdBmPerHz + vlib.Db(bwMHz*1e6)
}

// CouplingLossDb is the path loss less the antenna gains at both ends
func CouplingLossDb(pathLossDb, txGainDb, rxGainDb float64) float64 {
	return pathLossDb - txGainDb - rxGainDb
}

// LinkMetric is the outcome of Evaluate
type LinkMetric struct {
	PathLossDb     float64
	TxGainDb       float64
	RxGainDb       float64
	CouplingLossDb float64
	BeamPhi        float64 // direction in the transmit array's frame
	BeamTheta      float64
	RxPowerDbm     float64
	INRDb          float64 // RxPowerDbm - N0, when N0 is set
}

// Evaluate resolves the transmit array gain towards the receiver, draws the
// clutter loss for the link from model and combines them. rxGainDb is the
// victim antenna gain towards the transmitter, txPowerDbm the conducted
// transmit power. The receiver height drives the clutter term.
func (l *Link) Evaluate(tx *antenna.BeamformingArray, model *pathloss.ClutterModel, rxGainDb, txPowerDbm float64, shadowing bool) (LinkMetric, error) {
	var m LinkMetric
	if l.FreqMHz <= 0 {
		return m, fmt.Errorf("coexist: link frequency not set")
	}
	m.BeamPhi, m.BeamTheta = tx.ToLocal(l.Azimuth, l.Elevation)
	gain, err := tx.CalculateGain([]float64{m.BeamPhi}, []float64{m.BeamTheta}, antenna.GainOptions{})
	if err != nil {
		return m, fmt.Errorf("coexist: transmit gain: %w", err)
	}
	loss, err := model.Loss(pathloss.LossParams{
		Distance3D:     pathloss.Scalar(l.Distance3D),
		Frequency:      pathloss.Scalar(l.FreqMHz),
		IndoorStations: pathloss.NewMask(1, 1, []bool{l.Indoor}),
		UEHeight:       pathloss.Scalar(l.Rx.Z),
		Shadowing:      &shadowing,
	})
	if err != nil {
		return m, fmt.Errorf("coexist: path loss: %w", err)
	}

	m.PathLossDb = loss.At(0, 0)
	m.TxGainDb = gain[0]
	m.RxGainDb = rxGainDb
	m.CouplingLossDb = CouplingLossDb(m.PathLossDb, m.TxGainDb, m.RxGainDb)
	m.RxPowerDbm = txPowerDbm - m.CouplingLossDb
	if l.N0 != 0 {
		m.INRDb = m.RxPowerDbm - l.N0
	}
	if math.IsInf(m.TxGainDb, -1) {
		log.Warnf("coexist: transmit array null towards receiver at %v", l.Rx)
	}
	return m, nil
}
