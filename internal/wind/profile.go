package wind

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Sample is one row of the wind table: the wind at a sampled altitude.
// BearingDeg is the direction the wind blows from, normalized to [0,360).
type Sample struct {
	AltitudeFt float64
	BearingDeg float64
	SpeedKt    float64
}

// Profile is an altitude-indexed wind table, sorted ascending by altitude.
// It is immutable after construction and safe for concurrent readers.
type Profile struct {
	samples []Sample
}

// New validates and sorts samples into a Profile.
//
// An empty profile is a configuration error: there is no sane fallback wind,
// so it must be rejected before the simulation loop starts.
func New(samples []Sample) (*Profile, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("wind: profile is empty")
	}

	out := make([]Sample, len(samples))
	copy(out, samples)

	for i := range out {
		s := &out[i]
		if !isFinite(s.AltitudeFt) || !isFinite(s.BearingDeg) || !isFinite(s.SpeedKt) {
			return nil, fmt.Errorf("wind: sample %d has non-finite values", i)
		}
		if s.SpeedKt < 0 {
			return nil, fmt.Errorf("wind: sample %d has negative speed %v", i, s.SpeedKt)
		}
		s.BearingDeg = normalizeBearing(s.BearingDeg)
	}

	// Query order must not depend on load order.
	sort.Slice(out, func(i, j int) bool { return out[i].AltitudeFt < out[j].AltitudeFt })

	for i := 1; i < len(out); i++ {
		if out[i].AltitudeFt == out[i-1].AltitudeFt {
			return nil, fmt.Errorf("wind: duplicate altitude %v ft", out[i].AltitudeFt)
		}
	}

	return &Profile{samples: out}, nil
}

// LoadFile reads a headerless three-column CSV wind table:
// altitude (feet), bearing (degrees), speed (knots).
func LoadFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wind: open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("wind: read %s: %w", path, err)
	}

	samples := make([]Sample, 0, len(records))
	for i, rec := range records {
		alt, err := parseField(rec[0])
		if err != nil {
			return nil, fmt.Errorf("wind: %s row %d altitude: %w", path, i+1, err)
		}
		brg, err := parseField(rec[1])
		if err != nil {
			return nil, fmt.Errorf("wind: %s row %d bearing: %w", path, i+1, err)
		}
		kt, err := parseField(rec[2])
		if err != nil {
			return nil, fmt.Errorf("wind: %s row %d speed: %w", path, i+1, err)
		}
		samples = append(samples, Sample{AltitudeFt: alt, BearingDeg: brg, SpeedKt: kt})
	}

	return New(samples)
}

// Len reports the number of samples in the profile.
func (p *Profile) Len() int {
	if p == nil {
		return 0
	}
	return len(p.samples)
}

// Query returns the wind bearing and speed at the given altitude.
//
// Exact matches return the stored sample. Altitudes below the lowest or above
// the highest sample clamp to the nearest edge sample. In between, speed is
// linearly interpolated and bearing is interpolated along the shorter angular
// path so e.g. 350° to 10° passes through 0°, not 180°.
func (p *Profile) Query(altitudeFt float64) (bearingDeg, speedKt float64) {
	s := p.samples

	// First sample at or above the requested altitude.
	i := sort.Search(len(s), func(i int) bool { return s[i].AltitudeFt >= altitudeFt })

	if i < len(s) && s[i].AltitudeFt == altitudeFt {
		return s[i].BearingDeg, s[i].SpeedKt
	}
	if i == 0 {
		return s[0].BearingDeg, s[0].SpeedKt
	}
	if i == len(s) {
		last := s[len(s)-1]
		return last.BearingDeg, last.SpeedKt
	}

	lower, upper := s[i-1], s[i]
	fraction := (altitudeFt - lower.AltitudeFt) / (upper.AltitudeFt - lower.AltitudeFt)

	// Normalize into [0,360) first; math.Mod keeps the dividend's sign, so a
	// raw negative difference would dodge the shortest-path adjustment.
	delta := normalizeBearing(upper.BearingDeg - lower.BearingDeg)
	if delta > 180.0 {
		delta -= 360.0
	}

	bearingDeg = normalizeBearing(lower.BearingDeg + fraction*delta)
	speedKt = lower.SpeedKt + fraction*(upper.SpeedKt-lower.SpeedKt)
	return bearingDeg, speedKt
}

func normalizeBearing(deg float64) float64 {
	d := math.Mod(deg, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}

func parseField(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
