package poller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/strefethen/sonos-remote-go/internal/remote"
)

// Prober is the part of the remote the poller drives.
type Prober interface {
	GetVolume(ctx context.Context) int
	Status() remote.Status
}

// Publisher receives the snapshot taken after each probe.
type Publisher interface {
	Publish(remote.Status)
}

// Poller probes the speaker on a cron schedule so the connection flag stays
// current while nobody is pressing buttons.
type Poller struct {
	cron      *cron.Cron
	prober    Prober
	publisher Publisher
	timeout   time.Duration
	logger    *log.Logger

	mu          sync.Mutex
	lastOnline  bool
	initialized bool
}

// New schedules probes using a standard cron spec or descriptor such as "@every 30s".
func New(schedule string, prober Prober, publisher Publisher, timeout time.Duration, logger *log.Logger) (*Poller, error) {
	if logger == nil {
		logger = log.Default()
	}
	p := &Poller{
		prober:    prober,
		publisher: publisher,
		timeout:   timeout,
		logger:    logger,
	}
	p.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))))
	if _, err := p.cron.AddFunc(schedule, func() { p.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}
	return p, nil
}

// Start begins scheduled probes.
func (p *Poller) Start() {
	p.cron.Start()
}

// Stop halts the schedule and waits for a running probe to finish or ctx to end.
func (p *Poller) Stop(ctx context.Context) {
	done := p.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce performs a single probe and publishes the resulting snapshot.
func (p *Poller) RunOnce(ctx context.Context) remote.Status {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.prober.GetVolume(ctx)
	snapshot := p.prober.Status()

	p.mu.Lock()
	changed := !p.initialized || p.lastOnline != snapshot.Connected
	p.lastOnline = snapshot.Connected
	p.initialized = true
	p.mu.Unlock()

	if changed {
		if snapshot.Connected {
			p.logger.Printf("speaker online (volume %d)", snapshot.Volume)
		} else {
			p.logger.Printf("speaker offline")
		}
	}

	if p.publisher != nil {
		p.publisher.Publish(snapshot)
	}
	return snapshot
}
