package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"balloongps/internal/wind"
)

type captureSink struct {
	mu     sync.Mutex
	writes []string
	err    error
}

func (c *captureSink) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.writes = append(c.writes, string(p))
	return len(p), nil
}

func (c *captureSink) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.writes))
	copy(out, c.writes)
	return out
}

func twoSampleProfile(t *testing.T) *wind.Profile {
	t.Helper()
	p, err := wind.New([]wind.Sample{
		{AltitudeFt: 0, BearingDeg: 90, SpeedKt: 5},
		{AltitudeFt: 1000, BearingDeg: 180, SpeedKt: 10},
	})
	if err != nil {
		t.Fatalf("wind.New() error: %v", err)
	}
	return p
}

func TestNew_RequiresProfileAndSink(t *testing.T) {
	if _, err := New(Config{}, nil, &captureSink{}); err == nil {
		t.Fatalf("expected error for nil profile")
	}
	if _, err := New(Config{}, twoSampleProfile(t), nil); err == nil {
		t.Fatalf("expected error for nil sink")
	}
}

func TestEngine_AltitudeIntegration(t *testing.T) {
	e, err := New(Config{StartAltFt: 106}, twoSampleProfile(t), &captureSink{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	e.Nudge(1.0)
	tick := e.Step(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), 1*time.Second)

	want := 106 + 1.0*1*3.281
	if math.Abs(tick.State.AltFt-want) > 1e-9 {
		t.Fatalf("alt=%v want %v", tick.State.AltFt, want)
	}
	if tick.VerticalMPS != 1.0 {
		t.Fatalf("vs=%v want 1.0", tick.VerticalMPS)
	}
}

func TestEngine_NudgeAccumulatesAtomically(t *testing.T) {
	e, err := New(Config{}, twoSampleProfile(t), &captureSink{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Nudge(0.1)
		}()
	}
	wg.Wait()
	e.Nudge(-0.1)

	if got := e.VerticalMPS(); math.Abs(got-0.9) > 1e-9 {
		t.Fatalf("vs=%v want 0.9", got)
	}
}

func TestEngine_ScenarioMidProfileTick(t *testing.T) {
	// Start at 500 ft between the two samples: wind must be the midpoint
	// (bearing 135, 7.5 kt) and the position must drift northwest, since
	// the balloon moves away from a wind out of the southeast.
	e, err := New(Config{StartLatDeg: 0, StartLonDeg: 0, StartAltFt: 500}, twoSampleProfile(t), &captureSink{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tick := e.Step(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), 1*time.Second)

	if math.Abs(tick.WindBearingDeg-135) > 1e-9 {
		t.Fatalf("bearing=%v want 135", tick.WindBearingDeg)
	}
	if math.Abs(tick.WindSpeedKt-7.5) > 1e-9 {
		t.Fatalf("speed=%v want 7.5", tick.WindSpeedKt)
	}
	if tick.State.AltFt != 500 {
		t.Fatalf("alt=%v want 500 (vs is zero)", tick.State.AltFt)
	}
	if tick.State.LatDeg <= 0 {
		t.Fatalf("lat=%v want > 0", tick.State.LatDeg)
	}
	if tick.State.LonDeg >= 0 {
		t.Fatalf("lon=%v want < 0", tick.State.LonDeg)
	}

	if len(tick.Sentences) != 3 {
		t.Fatalf("sentences=%d want 3", len(tick.Sentences))
	}
	for _, s := range tick.Sentences {
		star := strings.LastIndexByte(s, '*')
		if !strings.HasPrefix(s, "$") || star != len(s)-3 {
			t.Fatalf("malformed sentence %q", s)
		}
		var ck byte
		for i := 1; i < star; i++ {
			ck ^= s[i]
		}
		if got := fmt.Sprintf("%02X", ck); got != s[star+1:] {
			t.Fatalf("checksum mismatch for %q: %s", s, got)
		}
	}
}

func TestEngine_StepIsDeterministicPerClock(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	run := func() Tick {
		e, err := New(Config{StartLatDeg: 10, StartLonDeg: 20, StartAltFt: 250}, twoSampleProfile(t), &captureSink{})
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		return e.Step(now, 1*time.Second)
	}

	a, b := run(), run()
	if a.State != b.State || a.WindBearingDeg != b.WindBearingDeg || a.WindSpeedKt != b.WindSpeedKt {
		t.Fatalf("expected deterministic tick: %+v vs %+v", a, b)
	}
}

func TestEngine_EmitWritesCRLFTerminatedSentences(t *testing.T) {
	sink := &captureSink{}
	e, err := New(Config{StartAltFt: 500}, twoSampleProfile(t), sink)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tick := e.Step(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), 1*time.Second)
	e.emit(tick)

	lines := sink.lines()
	if len(lines) != 3 {
		t.Fatalf("writes=%d want 3", len(lines))
	}
	for i, l := range lines {
		if !strings.HasSuffix(l, "\r\n") {
			t.Fatalf("line %d missing CRLF: %q", i, l)
		}
		if strings.TrimSuffix(l, "\r\n") != tick.Sentences[i] {
			t.Fatalf("line %d = %q want %q", i, l, tick.Sentences[i])
		}
	}
}

func TestEngine_WriteFailureDoesNotCorruptState(t *testing.T) {
	sink := &captureSink{err: errors.New("port gone")}
	e, err := New(Config{StartAltFt: 500}, twoSampleProfile(t), sink)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tick := e.Step(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), 1*time.Second)
	before := e.State()
	e.emit(tick)
	if e.State() != before {
		t.Fatalf("state changed across failed emit: %+v vs %+v", e.State(), before)
	}

	// The engine must keep stepping after the failure.
	next := e.Step(time.Date(2025, 3, 14, 12, 0, 1, 0, time.UTC), 1*time.Second)
	if len(next.Sentences) != 3 {
		t.Fatalf("sentences=%d want 3", len(next.Sentences))
	}
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	sink := &captureSink{}
	e, err := New(Config{StartAltFt: 500, Interval: 5 * time.Millisecond}, twoSampleProfile(t), sink)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- e.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for len(sink.lines()) < 6 { // at least two full ticks
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for ticks, writes=%d", len(sink.lines()))
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run() error = %v want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run() did not stop after cancel")
	}

	if n := len(sink.lines()); n%3 != 0 {
		t.Fatalf("writes=%d want a multiple of 3", n)
	}
}
