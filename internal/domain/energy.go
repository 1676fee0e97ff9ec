package domain

import "math"

// Energy scaling constants for E = 10^(4.8 + 1.5M), with E in joules.
const (
	energyOffset = 4.8
	energySlope  = 1.5

	// energyEpsilon keeps log10 finite for an empty window (E == 0).
	energyEpsilon = 1e-14
)

// MagnitudeToEnergy converts a magnitude to radiated seismic energy.
func MagnitudeToEnergy(magnitude float64) float64 {
	return math.Pow(10, energyOffset+energySlope*magnitude)
}

// EnergyToMagnitude converts energy back to magnitude units. A zero input
// yields a large negative magnitude rather than -Inf.
func EnergyToMagnitude(energy float64) float64 {
	return (math.Log10(energy+energyEpsilon) - energyOffset) / energySlope
}
