package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"balloongps/internal/config"
	"balloongps/internal/control"
	"balloongps/internal/sim"
	"balloongps/internal/transport"
	"balloongps/internal/wind"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./dev.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	profile, err := wind.LoadFile(cfg.Wind.Path)
	if err != nil {
		log.Fatalf("wind profile load failed: %v", err)
	}

	sink, err := transport.Open(transport.Config{
		Mode:    cfg.Output.Mode,
		Device:  cfg.Output.Device,
		Baud:    cfg.Output.Baud,
		Backend: cfg.Output.Backend,
		UDPDest: cfg.Output.UDPDest,
	})
	if err != nil {
		log.Fatalf("transport open failed: %v", err)
	}
	defer func() {
		_ = sink.Close()
	}()

	engine, err := sim.New(sim.Config{
		StartLatDeg: cfg.Sim.StartLatDeg,
		StartLonDeg: cfg.Sim.StartLonDeg,
		StartAltFt:  cfg.Sim.StartAltFt,
		Interval:    cfg.Sim.Interval,
		Settle:      cfg.Sim.Settle,
	}, profile, sink)
	if err != nil {
		log.Fatalf("engine init failed: %v", err)
	}

	if cfg.Control.Enable {
		poller := control.New(control.Config{
			Enable:       true,
			PollInterval: cfg.Control.PollInterval,
			StepMPS:      cfg.Control.StepMPS,
		}, os.Stdin, engine.Nudge)
		if err := poller.Start(ctx); err != nil {
			// Operator input is optional; the flight continues without it.
			log.Printf("control init failed: %v", err)
		} else {
			defer poller.Close()
			log.Printf("control enabled step_mps=%.1f ('+' climbs, '-' descends)", cfg.Control.StepMPS)
		}
	}

	log.Printf("balloongps starting")
	log.Printf("output mode=%s device=%s baud=%d udp_dest=%s interval=%s",
		cfg.Output.Mode, cfg.Output.Device, cfg.Output.Baud, cfg.Output.UDPDest, cfg.Sim.Interval)
	log.Printf("wind profile samples=%d path=%s", profile.Len(), cfg.Wind.Path)

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("simulation stopped: %v", err)
	}
	log.Printf("balloongps stopping")
}
