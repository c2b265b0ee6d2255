package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aquaponics-lab/aquamon/internal/client"
	"github.com/aquaponics-lab/aquamon/internal/datadog"
	"github.com/aquaponics-lab/aquamon/internal/model"
	"github.com/aquaponics-lab/aquamon/internal/notifications"
	"github.com/aquaponics-lab/aquamon/internal/render"
)

const DefaultInterval = 5 * time.Second

// Fetcher is the network boundary the poller drives.
type Fetcher interface {
	FetchLatest(ctx context.Context) (*model.Reading, error)
	SendCommand(ctx context.Context, cmd model.CommandRequest) error
}

type fetchResult struct {
	reading *model.Reading
	err     error
}

// Poller owns the repeating fetch tick, the in-flight guard, and the current
// presentation. All display state is mutated and all surface calls are made
// only on the control loop goroutine; fetches and commands run on worker
// goroutines and hand results and notices back over channels. At most one
// fetch is outstanding at any time.
type Poller struct {
	fetcher  Fetcher
	surface  render.Surface
	interval time.Duration

	mu            sync.RWMutex
	current       render.Presentation
	autoRefresh   bool
	inFlight      bool
	lastCompleted time.Time

	refreshCh chan struct{}
	toggleCh  chan bool
	commandCh chan model.CommandRequest
	resultCh  chan fetchResult
	noticeCh  chan string

	// onCommandResult, when set, observes every dispatched command's outcome.
	onCommandResult func(cmd model.CommandRequest, err error)
}

// Snapshot is a read-only copy of the poller's display and control state.
type Snapshot struct {
	Presentation  render.Presentation
	AutoRefresh   bool
	InFlight      bool
	LastCompleted time.Time
}

func New(fetcher Fetcher, surface render.Surface, interval time.Duration, autoRefresh bool) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:     fetcher,
		surface:     surface,
		interval:    interval,
		current:     render.Initial(),
		autoRefresh: autoRefresh,
		refreshCh:   make(chan struct{}, 1),
		toggleCh:    make(chan bool, 4),
		commandCh:   make(chan model.CommandRequest, 4),
		resultCh:    make(chan fetchResult, 1),
		noticeCh:    make(chan string, 4),
	}
}

// SetCommandHook registers a callback observing dispatched command outcomes.
// Must be called before Start.
func (p *Poller) SetCommandHook(hook func(cmd model.CommandRequest, err error)) {
	p.onCommandResult = hook
}

// Start launches the control loop. The loop performs an immediate initial
// fetch, then fetches once per interval while auto-refresh is enabled.
// Cancelling ctx stops future ticks; an in-flight fetch is not aborted, but its
// result is discarded once the loop has exited.
func (p *Poller) Start(ctx context.Context) {
	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	log.Info().
		Dur("interval", p.interval).
		Bool("auto_refresh", p.Snapshot().AutoRefresh).
		Msg("Starting poller")

	p.surface.Apply(p.Snapshot().Presentation)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.startFetch(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Poller stopped")
			return
		case <-ticker.C:
			if !p.Snapshot().AutoRefresh {
				continue
			}
			p.startFetch(ctx)
		case <-p.refreshCh:
			p.startFetch(ctx)
		case enabled := <-p.toggleCh:
			p.setAutoRefresh(enabled)
			log.Info().Bool("enabled", enabled).Msg("Auto-refresh toggled")
			if enabled {
				// Resume the interval from now and fetch right away
				ticker.Reset(p.interval)
				p.startFetch(ctx)
			}
		case cmd := <-p.commandCh:
			p.runCommand(ctx, cmd)
		case res := <-p.resultCh:
			p.applyResult(res)
		case notice := <-p.noticeCh:
			p.surface.Notify(notice)
		}
	}
}

// Refresh requests an immediate fetch. Subject to the in-flight guard; requests
// that arrive while one is already queued collapse into it.
func (p *Poller) Refresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// SetAutoRefresh enables or disables periodic ticking. Disabling never aborts
// an in-flight fetch; enabling performs an immediate fetch.
func (p *Poller) SetAutoRefresh(enabled bool) {
	p.toggleCh <- enabled
}

// Dispatch sends a control command off-loop. On HTTP success the poller
// performs one out-of-band fetch so the display reflects the server's new
// state; on failure only a transient notification is surfaced.
func (p *Poller) Dispatch(cmd model.CommandRequest) {
	p.commandCh <- cmd
}

// Snapshot returns a copy of the current display and control state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() Snapshot {
	return Snapshot{
		Presentation:  p.current,
		AutoRefresh:   p.autoRefresh,
		InFlight:      p.inFlight,
		LastCompleted: p.lastCompleted,
	}
}

func (p *Poller) startFetch(ctx context.Context) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		log.Debug().Msg("Fetch already in flight - skipping tick")
		datadog.Count("poller.ticks_skipped", 1)
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	go func() {
		start := time.Now()
		reading, err := p.fetcher.FetchLatest(ctx)
		datadog.Timing("client.fetch_duration", time.Since(start))
		select {
		case p.resultCh <- fetchResult{reading: reading, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (p *Poller) applyResult(res fetchResult) {
	prev := p.Snapshot().Presentation

	var next render.Presentation
	if res.err != nil {
		log.Warn().Err(res.err).Msg("Fetch failed")
		datadog.Count("client.fetch_errors", 1, errorKindTag(res.err))
		next = render.FromError(prev, res.err)
	} else {
		next = render.FromReading(prev, res.reading)
		if prev.Theme != render.ThemeAlert && next.Theme == render.ThemeAlert {
			go func(diagnosis string) {
				if err := notifications.Send("Aquaponics alert", diagnosis); err != nil {
					log.Debug().Err(err).Msg("Alert notification not sent")
				}
			}(next.Diagnosis)
		}
	}

	p.mu.Lock()
	p.current = next
	p.inFlight = false
	p.lastCompleted = time.Now()
	p.mu.Unlock()

	p.surface.Apply(next)
}

func (p *Poller) runCommand(ctx context.Context, cmd model.CommandRequest) {
	go func() {
		err := p.fetcher.SendCommand(ctx, cmd)
		if p.onCommandResult != nil {
			p.onCommandResult(cmd, err)
		}
		if err != nil {
			log.Warn().
				Err(err).
				Str("target", string(cmd.Target)).
				Str("state", string(cmd.State)).
				Msg("Control command failed")
			datadog.Count("client.command_errors", 1, "target:"+string(cmd.Target))
			// Surface calls stay on the control loop; the worker only enqueues.
			select {
			case p.noticeCh <- fmt.Sprintf("Control error: %s", err):
			default:
			}
			if nerr := notifications.Send("Aquamon control failure", err.Error()); nerr != nil {
				log.Debug().Err(nerr).Msg("Command failure notification not sent")
			}
			return
		}
		datadog.Count("client.commands_sent", 1, "target:"+string(cmd.Target))
		// Refresh so the display reflects the server's post-command state
		p.Refresh()
	}()
}

func (p *Poller) setAutoRefresh(enabled bool) {
	p.mu.Lock()
	p.autoRefresh = enabled
	p.mu.Unlock()
}

func errorKindTag(err error) string {
	var netErr *client.NetworkError
	var srvErr *client.ServerError
	var parseErr *client.ParseError
	switch {
	case errors.As(err, &netErr):
		return "kind:network"
	case errors.As(err, &srvErr):
		return "kind:server"
	case errors.As(err, &parseErr):
		return "kind:parse"
	default:
		return "kind:other"
	}
}
