// Command coexist sweeps the clutter loss model over distance and prints an
// azimuth cut of a steered IMT base-station array.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/wiless/coexist/antenna"
	"github.com/wiless/coexist/pathloss"
	"github.com/wiless/coexist/station"
	"github.com/wiless/vlib"
	"gonum.org/v1/gonum/mat"
)

var (
	indir   string
	outdir  string
	mfile   bool
	verbose bool
)

var heading = color.New(color.FgCyan, color.Bold)

func init() {
	flag.StringVar(&indir, "indir", ".", "Directory where coexist.yaml is read from")
	flag.StringVar(&outdir, "outdir", ".", "Directory where output files are written")
	flag.BoolVar(&mfile, "matlab", false, "Export the sweep to coexist.m")
	flag.BoolVar(&verbose, "v", false, "Print debug logs")
}

func main() {
	help := flag.Bool("help", false, "prints this help")
	flag.Parse()
	if *help {
		flag.PrintDefaults()
		os.Exit(0)
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := ReadAppConfig(indir)
	if err != nil {
		log.Fatal(err)
	}

	var matlab *vlib.Matlab
	if mfile {
		matlab = vlib.NewMatlab(filepath.Join(outdir, "coexist.m"))
		matlab.Silent = true
		defer matlab.Close()
	}

	rng := pathloss.NewRandomState(cfg.Seed)
	for _, env := range cfg.Environments {
		if err := sweep(cfg, env, rng, matlab); err != nil {
			log.Fatal(err)
		}
	}
	if err := azimuthCut(cfg, matlab); err != nil {
		log.Fatal(err)
	}
}

// distances returns MinDistance, MinDistance+Step, ... up to MaxDistance
func distances(cfg AppConfig) vlib.VectorF {
	var d vlib.VectorF
	for x := cfg.MinDistance; x <= cfg.MaxDistance+1e-9; x += cfg.Step {
		d.AppendAtEnd(x)
	}
	return d
}

func sweep(cfg AppConfig, env string, rng *pathloss.RandomState, matlab *vlib.Matlab) error {
	model, err := pathloss.NewClutterModel(rng, env)
	if err != nil {
		return err
	}
	d := distances(cfg)
	n := len(d)

	indoor := pathloss.NewMask(1, n, nil)
	if cfg.IndoorRatio > 0 {
		draw := rng.Uniform(0, 1, 1, n)
		for j := 0; j < n; j++ {
			indoor.Set(0, j, draw.At(0, j) < cfg.IndoorRatio)
		}
	}

	dist := pathloss.Row(d...)
	freq := pathloss.Scalar(cfg.FreqMHz)
	fs, err := pathloss.NewFreeSpace().Loss(dist, freq)
	if err != nil {
		return err
	}
	ue, err := model.Loss(pathloss.LossParams{
		Distance3D:      dist,
		Frequency:       freq,
		IndoorStations:  indoor,
		Shadowing:       &cfg.Shadowing,
		UEHeight:        pathloss.Scalar(cfg.UEHeight),
		NumberOfSectors: cfg.Sectors,
	})
	if err != nil {
		return err
	}
	esType := cfg.ESType
	es, err := model.Loss(pathloss.LossParams{
		Distance3D:      dist,
		Frequency:       freq,
		IndoorStations:  indoor,
		Shadowing:       &cfg.Shadowing,
		IMTStationType:  &esType,
		ESHeight:        cfg.ESHeight,
		NumberOfSectors: cfg.Sectors,
	})
	if err != nil {
		return err
	}

	heading.Printf("\n%v @ %v MHz: UE %v m, %v %v m\n", model.Environment, cfg.FreqMHz, cfg.UEHeight, esType, cfg.ESHeight)
	fmt.Printf("%10s %10s %10s %10s\n", "d(m)", "FS(dB)", "UE(dB)", "ES(dB)")
	sectors := cfg.Sectors
	if sectors < 1 {
		sectors = 1
	}
	for j := 0; j < n; j++ {
		// sector copies are identical, read the first
		fmt.Printf("%10.1f %10.2f %10.2f %10.2f\n", d[j], fs.At(0, j), ue.At(0, j*sectors), es.At(0, j*sectors))
	}

	if matlab != nil {
		matlab.Export("d", d)
		matlab.Export("FS_"+model.Environment.String(), rowOf(fs, 1))
		matlab.Export("UE_"+model.Environment.String(), rowOf(ue, sectors))
		matlab.Export("ES_"+model.Environment.String(), rowOf(es, sectors))
	}
	return nil
}

// rowOf reads every stride-th entry of the first row
func rowOf(m *mat.Dense, stride int) vlib.VectorF {
	_, c := m.Dims()
	var v vlib.VectorF
	for j := 0; j < c; j += stride {
		v.AppendAtEnd(m.At(0, j))
	}
	return v
}

// steeredArray builds the base-station array of cfg with one beam
func steeredArray(cfg AppConfig) (*antenna.BeamformingArray, error) {
	params := antenna.NewParameters()
	if cfg.Antenna != nil {
		if err := params.Decode(cfg.Antenna); err != nil {
			return nil, err
		}
	}
	bs, err := antenna.NewBeamformingArray(params, 0, 0, station.IMTBS, station.TX)
	if err != nil {
		return nil, err
	}
	bs.AddBeam(cfg.BeamPhi, cfg.BeamTilt)
	return bs, nil
}

// cut evaluates the beam over azimuth in the plane of its peak
func cut(cfg AppConfig, bs *antenna.BeamformingArray) (phi, gain vlib.VectorF, err error) {
	var theta vlib.VectorF
	for p := -180.0; p <= 180; p++ {
		phi.AppendAtEnd(p)
		theta.AppendAtEnd(90 + cfg.BeamTilt)
	}
	gain, err = bs.CalculateGain(phi, theta, antenna.GainOptions{})
	return phi, gain, err
}

func azimuthCut(cfg AppConfig, matlab *vlib.Matlab) error {
	bs, err := steeredArray(cfg)
	if err != nil {
		return err
	}
	phi, gain, err := cut(cfg, bs)
	if err != nil {
		return err
	}

	g := bs.Geometry()
	heading.Printf("\nIMT BS %dx%d, beam scan %v tilt %v (theta %v)\n", g.NRows, g.NCols, cfg.BeamPhi, cfg.BeamTilt, 90+cfg.BeamTilt)
	fmt.Printf("%10s %10s\n", "phi", "G(dBi)")
	for i := 0; i < len(phi); i += 10 {
		fmt.Printf("%10.0f %10.2f\n", phi[i], gain[i])
	}
	if matlab != nil {
		matlab.Export("phi", phi)
		matlab.Export("gain", gain)
	}
	return nil
}
