package geo

import (
	"math"
	"testing"
)

func TestStep_ZeroSpeedIsNoOp(t *testing.T) {
	lat, lon := Step(57.5, 11.7, 123.0, 0, 1)
	if lat != 57.5 || lon != 11.7 {
		t.Fatalf("got (%v,%v) want (57.5,11.7)", lat, lon)
	}
}

func TestStep_ZeroDtIsNoOp(t *testing.T) {
	lat, lon := Step(10, 20, 90, 5, 0)
	if lat != 10 || lon != 20 {
		t.Fatalf("got (%v,%v) want (10,20)", lat, lon)
	}
}

func TestStep_OneKnotHourMovesOneNauticalMile(t *testing.T) {
	// Wind from the south for one hour at one knot drifts the point due
	// north by 1.852 km over the 6371 km sphere.
	wantDeg := (1.852 / 6371.0) * 180.0 / math.Pi

	lat, lon := Step(0, 0, 180, 1, 3600)
	if math.Abs(lat-wantDeg) > 1e-6 {
		t.Fatalf("lat=%v want %v", lat, wantDeg)
	}
	if math.Abs(lon) > 1e-9 {
		t.Fatalf("lon=%v want 0", lon)
	}
}

func TestStep_MovesOppositeWindSourceBearing(t *testing.T) {
	cases := []struct {
		name       string
		bearingDeg float64
		check      func(t *testing.T, lat, lon float64)
	}{
		{
			name:       "WindFromNorthMovesSouth",
			bearingDeg: 0,
			check: func(t *testing.T, lat, lon float64) {
				if lat >= 0 {
					t.Fatalf("lat=%v want < 0", lat)
				}
				if math.Abs(lon) > 1e-9 {
					t.Fatalf("lon=%v want 0", lon)
				}
			},
		},
		{
			name:       "WindFromEastMovesWest",
			bearingDeg: 90,
			check: func(t *testing.T, lat, lon float64) {
				if lon >= 0 {
					t.Fatalf("lon=%v want < 0", lon)
				}
				if math.Abs(lat) > 1e-6 {
					t.Fatalf("lat=%v want ~0", lat)
				}
			},
		},
		{
			name:       "WindFromWestMovesEast",
			bearingDeg: 270,
			check: func(t *testing.T, lat, lon float64) {
				if lon <= 0 {
					t.Fatalf("lon=%v want > 0", lon)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lat, lon := Step(0, 0, tc.bearingDeg, 10, 60)
			tc.check(t, lat, lon)
		})
	}
}

func TestStep_NonFiniteInputKeepsPreviousPosition(t *testing.T) {
	lat, lon := Step(45, 9, math.NaN(), 10, 60)
	if lat != 45 || lon != 9 {
		t.Fatalf("got (%v,%v) want (45,9)", lat, lon)
	}
}

func TestStep_ResultStaysFinite(t *testing.T) {
	// Near-pole start with a long step must still yield finite output.
	lat, lon := Step(89.9999, 0, 180, 500, 3600)
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		t.Fatalf("non-finite result (%v,%v)", lat, lon)
	}
	if lat < -90 || lat > 90 {
		t.Fatalf("lat=%v out of range", lat)
	}
}

func TestNormalizeLon(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{179.5, 179.5},
		{180, -180},
		{190, -170},
		{-180, -180},
		{-190, 170},
		{540, -180},
	}
	for _, tc := range cases {
		if got := NormalizeLon(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("NormalizeLon(%v)=%v want %v", tc.in, got, tc.want)
		}
	}
}
