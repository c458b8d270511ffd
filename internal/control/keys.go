package control

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Config controls the operator keystroke poller.
type Config struct {
	Enable bool

	// PollInterval is how often input is sampled; this is independent of the
	// simulation tick cadence and should be much faster.
	PollInterval time.Duration

	// StepMPS is the vertical-speed change applied per keystroke.
	StepMPS float64
}

// KeyPoller samples single keystrokes from an input stream and applies
// vertical-speed nudges: '+'/'=' climbs, '-'/'_' descends. The simulation
// engine never sees the input mechanism, only the nudge callback.
type KeyPoller struct {
	cfg   Config
	in    io.Reader
	nudge func(deltaMPS float64)

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}

	restore func()
}

// New builds a poller reading from in. nudge receives signed m/s deltas.
func New(cfg Config, in io.Reader, nudge func(deltaMPS float64)) *KeyPoller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if cfg.StepMPS <= 0 {
		cfg.StepMPS = 0.1
	}
	return &KeyPoller{cfg: cfg, in: in, nudge: nudge, stopCh: make(chan struct{})}
}

// Start begins sampling keystrokes until ctx is canceled or Close is called.
// When reading a terminal, the tty is switched to unbuffered input so
// keystrokes arrive without a newline; this is best-effort and restored on
// Close.
func (k *KeyPoller) Start(ctx context.Context) error {
	if k == nil {
		return fmt.Errorf("control: poller is nil")
	}
	if !k.cfg.Enable {
		return nil
	}
	if k.in == nil || k.nudge == nil {
		return fmt.Errorf("control: input and nudge are required")
	}

	if f, ok := k.in.(*os.File); ok {
		restore, err := makeRawInput(f)
		if err != nil {
			// Line-buffered input still works, just needs Enter per key.
			log.Printf("control: raw input unavailable: %v", err)
		} else {
			k.restore = restore
		}
	}

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		k.loop(ctx)
	}()

	go func() {
		<-ctx.Done()
		k.Close()
	}()
	return nil
}

func (k *KeyPoller) loop(ctx context.Context) {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		case <-k.stopCh:
			return
		default:
		}

		n, err := k.in.Read(buf)
		if err != nil {
			if err != io.EOF {
				log.Printf("control: input read stopped: %v", err)
			}
			return
		}
		if n == 1 {
			switch buf[0] {
			case '+', '=':
				k.nudge(k.cfg.StepMPS)
			case '-', '_':
				k.nudge(-k.cfg.StepMPS)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-k.stopCh:
			return
		case <-time.After(k.cfg.PollInterval):
		}
	}
}

// Close stops sampling and restores the terminal state if it was changed.
// It does not wait for a blocked read; process exit releases that.
func (k *KeyPoller) Close() {
	if k == nil {
		return
	}
	k.stopOnce.Do(func() {
		close(k.stopCh)
		if k.restore != nil {
			k.restore()
		}
	})
}
