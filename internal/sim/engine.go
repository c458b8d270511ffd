package sim

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"sync/atomic"
	"time"

	"balloongps/internal/geo"
	"balloongps/internal/nmea"
	"balloongps/internal/wind"
)

const feetPerMeterVS = 3.281

// Config holds the engine's initial state and timing.
type Config struct {
	StartLatDeg float64
	StartLonDeg float64
	StartAltFt  float64

	// Interval is the tick cadence. Settle is how long Run waits before the
	// first tick so downstream nav software can attach to the port.
	Interval time.Duration
	Settle   time.Duration
}

// State is the mutable flight state, advanced exactly once per tick.
// Vertical speed lives separately in the engine's atomic field so the
// operator input goroutine can nudge it without touching the rest.
type State struct {
	LatDeg float64
	LonDeg float64
	AltFt  float64
}

// Tick is the observable result of one simulation step.
type Tick struct {
	State          State
	WindBearingDeg float64
	WindSpeedKt    float64
	VerticalMPS    float64
	Sentences      []string
}

// Engine owns the flight state and drives it from the wind profile.
type Engine struct {
	cfg     Config
	profile *wind.Profile
	sink    io.Writer

	// vertical speed in thousandths of m/s; read once per tick, adjusted
	// atomically from the control goroutine.
	vsMilli atomic.Int64

	state State
}

// New builds an engine. The wind profile must be non-empty; an empty profile
// has no valid fallback and must be rejected before the loop starts.
func New(cfg Config, profile *wind.Profile, sink io.Writer) (*Engine, error) {
	if profile == nil || profile.Len() == 0 {
		return nil, fmt.Errorf("sim: wind profile is empty")
	}
	if sink == nil {
		return nil, fmt.Errorf("sim: sink is nil")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 1 * time.Second
	}

	return &Engine{
		cfg:     cfg,
		profile: profile,
		sink:    sink,
		state: State{
			LatDeg: cfg.StartLatDeg,
			LonDeg: cfg.StartLonDeg,
			AltFt:  cfg.StartAltFt,
		},
	}, nil
}

// Nudge adjusts the vertical speed by deltaMPS. Safe to call from any
// goroutine; this is the only cross-goroutine write into the simulation.
func (e *Engine) Nudge(deltaMPS float64) {
	e.vsMilli.Add(int64(math.Round(deltaMPS * 1000.0)))
}

// VerticalMPS returns the current vertical speed in m/s.
func (e *Engine) VerticalMPS() float64 {
	return float64(e.vsMilli.Load()) / 1000.0
}

// State returns the current flight state. Only meaningful between ticks;
// Run and Step must not be invoked concurrently with each other.
func (e *Engine) State() State {
	return e.state
}

// Step advances the simulation by dt: integrate altitude from vertical
// speed, query the wind at the new altitude, drift the position downwind and
// encode the NMEA sentences for the new fix.
func (e *Engine) Step(now time.Time, dt time.Duration) Tick {
	vs := e.VerticalMPS()
	e.state.AltFt += vs * dt.Seconds() * feetPerMeterVS

	bearing, speedKt := e.profile.Query(e.state.AltFt)

	e.state.LatDeg, e.state.LonDeg = geo.Step(e.state.LatDeg, e.state.LonDeg, bearing, speedKt, dt.Seconds())

	fix := nmea.Fix{
		LatDeg:   e.state.LatDeg,
		LonDeg:   e.state.LonDeg,
		AltFt:    e.state.AltFt,
		GroundKt: speedKt,
		Time:     now,
	}

	return Tick{
		State:          e.state,
		WindBearingDeg: bearing,
		WindSpeedKt:    speedKt,
		VerticalMPS:    vs,
		Sentences:      fix.Encode(),
	}
}

// Run ticks the simulation until ctx is canceled. It waits the configured
// settle period first, then emits the sentences for each tick to the sink,
// CRLF-terminated, and logs one status line per tick.
//
// A failed transport write is logged and the simulation keeps going; the
// flight state is never rolled back or corrupted by I/O failures.
func (e *Engine) Run(ctx context.Context) error {
	if e.cfg.Settle > 0 {
		log.Printf("sim: waiting %s for nav software to connect", e.cfg.Settle)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.cfg.Settle):
		}
	}

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			t := e.Step(now.UTC(), e.cfg.Interval)
			e.emit(t)
			log.Printf("sim: lat=%.6f lon=%.6f alt_ft=%.1f wind_kt=%.2f vs_mps=%.1f",
				t.State.LatDeg, t.State.LonDeg, t.State.AltFt, t.WindSpeedKt, t.VerticalMPS)
		}
	}
}

func (e *Engine) emit(t Tick) {
	for _, s := range t.Sentences {
		if _, err := io.WriteString(e.sink, s+"\r\n"); err != nil {
			// Keep the simulation alive across transient transport faults.
			log.Printf("sim: transport write failed: %v", err)
			return
		}
	}
}
