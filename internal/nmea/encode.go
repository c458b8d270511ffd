package nmea

import (
	"fmt"
	"math"
	"time"
)

const feetPerMeter = 3.28084

// Fix is a single position report to render as NMEA sentences.
// Values are consumed immediately by Encode and never persisted.
type Fix struct {
	LatDeg   float64
	LonDeg   float64
	AltFt    float64
	GroundKt float64
	Time     time.Time
}

// Checksum returns the NMEA checksum of a sentence body: the XOR of every
// byte between '$' and '*' (exclusive), as two uppercase hex digits.
func Checksum(body string) string {
	var ck byte
	for i := 0; i < len(body); i++ {
		ck ^= body[i]
	}
	return fmt.Sprintf("%02X", ck)
}

// Sentence wraps a body as $<body>*<checksum>.
func Sentence(body string) string {
	return "$" + body + "*" + Checksum(body)
}

// Encode renders the fix as RMC, GGA and VTG sentences, in that order.
//
// Altitude is converted to meters for GGA; fix quality, satellite count,
// HDOP, geoid separation and magnetic variation are fixed values matching a
// healthy single-receiver fix. Non-finite inputs are the caller's problem;
// the position propagator guards against them upstream.
func (f Fix) Encode() []string {
	latStr, latHemi := formatCoord(f.LatDeg, 2, "N", "S")
	lonStr, lonHemi := formatCoord(f.LonDeg, 3, "E", "W")

	// hhmmss in UTC with a fixed fractional-seconds suffix.
	ts := f.Time.UTC().Format("150405") + ".6"

	altM := f.AltFt / feetPerMeter

	rmc := fmt.Sprintf("GNRMC,%s,A,%s,%s,%s,%s,%.2f,,,002.7,E,N",
		ts, latStr, latHemi, lonStr, lonHemi, f.GroundKt)
	gga := fmt.Sprintf("GNGGA,%s,%s,%s,%s,%s,1,08,0.9,%.1f,M,0.0,M,,",
		ts, latStr, latHemi, lonStr, lonHemi, altM)
	vtg := fmt.Sprintf("GNVTG,,T,,M,%.2f,N,,K,N", f.GroundKt)

	return []string{Sentence(rmc), Sentence(gga), Sentence(vtg)}
}

// formatCoord renders a signed decimal degree value in NMEA
// degrees-and-decimal-minutes form plus a hemisphere letter.
func formatCoord(deg float64, degDigits int, pos, neg string) (string, string) {
	hemi := pos
	if deg < 0 {
		hemi = neg
	}
	abs := math.Abs(deg)
	whole := int(abs)
	minutes := (abs - float64(whole)) * 60.0
	return fmt.Sprintf("%0*d%.6f", degDigits, whole, minutes), hemi
}
