// Package pathloss implements free-space and clutter path-loss models over
// batches of links.
package pathloss

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// BuildingLoss is added to links whose far-end terminal is indoors (dB)
const BuildingLoss = 20.0

// Environment selects the clutter profile of a ClutterModel
type Environment int

var Environments = [...]string{
	"URBAN",
	"SUBURBAN",
}

const (
	Urban Environment = iota
	Suburban
)

func (e Environment) String() string {
	if e < 0 || int(e) >= len(Environments) {
		return fmt.Sprintf("Environment(%d)", int(e))
	}
	return Environments[e]
}

// EnvironmentProfile binds the constants of one clutter environment
type EnvironmentProfile struct {
	DK           float64 // characteristic clutter distance, km
	ShadowingStd float64 // dB
	HA           float64 // reference clutter height, m
}

var profiles = map[Environment]EnvironmentProfile{
	Urban:    {DK: 0.02, ShadowingStd: 6, HA: 20},
	Suburban: {DK: 0.025, ShadowingStd: 8, HA: 9},
}

// Profile returns the constants bound to e
func (e Environment) Profile() EnvironmentProfile {
	return profiles[e]
}

// ParseEnvironment matches name case-insensitively against the known
// environments.
func ParseEnvironment(name string) (Environment, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	for i, s := range Environments {
		if s == key {
			return Environment(i), nil
		}
	}
	return Urban, &ConfigurationError{Key: "environment", Reason: "unknown environment " + name}
}

// FreeSpaceLoss computes the baseline loss of a batch of links; distance in
// metres, frequency in MHz.
type FreeSpaceLoss interface {
	Loss(distance3D, frequency mat.Matrix) (*mat.Dense, error)
}

// NormalSource draws r x c independent samples of N(mean, std^2)
type NormalSource interface {
	Normal(mean, std float64, r, c int) *mat.Dense
}
