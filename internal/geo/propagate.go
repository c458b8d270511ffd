package geo

import (
	"log"
	"math"
)

// Mean Earth radius used for dead reckoning.
const earthRadiusKm = 6371.0

const kmPerNauticalMile = 1.852

// Step computes the next position after drifting downwind for dtSeconds.
//
// windBearingDeg is the direction the wind blows from; the balloon moves the
// opposite way. The destination is computed with the spherical-Earth direct
// geodesic formula. A zero or negative travel distance returns the input
// position unchanged.
func Step(latDeg, lonDeg, windBearingDeg, windSpeedKt, dtSeconds float64) (newLatDeg, newLonDeg float64) {
	distanceKm := windSpeedKt * kmPerNauticalMile * (dtSeconds / 3600.0)
	if distanceKm <= 0 {
		return latDeg, lonDeg
	}

	// Movement heading is opposite the wind's source bearing.
	headingDeg := math.Mod(windBearingDeg+180.0, 360.0)

	lat := latDeg * math.Pi / 180.0
	lon := lonDeg * math.Pi / 180.0
	heading := headingDeg * math.Pi / 180.0
	angular := distanceKm / earthRadiusKm

	sinLat, cosLat := math.Sincos(lat)

	newLat := math.Asin(sinLat*math.Cos(angular) + cosLat*math.Sin(angular)*math.Cos(heading))
	newLon := lon + math.Atan2(
		math.Sin(heading)*math.Sin(angular)*cosLat,
		math.Cos(angular)-sinLat*math.Sin(newLat),
	)

	newLatDeg = newLat * 180.0 / math.Pi
	newLonDeg = NormalizeLon(newLon * 180.0 / math.Pi)

	// Numerically degenerate input must not propagate into the flight state.
	if !isFinite(newLatDeg) || !isFinite(newLonDeg) {
		log.Printf("geo: non-finite position result, keeping previous position")
		return latDeg, lonDeg
	}
	return newLatDeg, newLonDeg
}

// NormalizeLon wraps a longitude into [-180, 180).
func NormalizeLon(lonDeg float64) float64 {
	l := math.Mod(lonDeg+180.0, 360.0)
	if l < 0 {
		l += 360.0
	}
	return l - 180.0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
