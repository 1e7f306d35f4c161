// Package pacing decides how long a presentation layer lingers on each table
// event before showing the next one. Round outcomes never depend on it.
package pacing

import (
	"context"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/minicasino/internal/game"
)

// Timings are the base delays shown before an event
type Timings struct {
	BeforeDeal   time.Duration // Round start to first card
	BetweenCards time.Duration // Blackjack initial deal
	NaturalCheck time.Duration // Blackjack two-card hands to the natural check
	BeforeReveal time.Duration // Blackjack stand to hole card reveal
	DealerDraw   time.Duration // Each blackjack dealer draw
	BaccaratCard time.Duration // Each baccarat card
	BeforeThird  time.Duration // Extra pause before a baccarat third card
	ResetAfter   time.Duration // Settled baccarat coup to the next bet
}

// DefaultTimings returns the table's standard rhythm
func DefaultTimings() Timings {
	return Timings{
		BeforeDeal:   120 * time.Millisecond,
		BetweenCards: 220 * time.Millisecond,
		NaturalCheck: 200 * time.Millisecond,
		BeforeReveal: 300 * time.Millisecond,
		DealerDraw:   350 * time.Millisecond,
		BaccaratCard: 600 * time.Millisecond,
		BeforeThird:  500 * time.Millisecond,
		ResetAfter:   3 * time.Second,
	}
}

// Pacer assigns delays to events and tracks when the next one may be shown
type Pacer struct {
	clock   quartz.Clock
	timings Timings
	scale   float64
	enabled bool
	readyAt time.Time
}

// Option configures a Pacer
type Option func(*Pacer)

// WithTimings replaces the default timings
func WithTimings(t Timings) Option {
	return func(p *Pacer) {
		p.timings = t
	}
}

// WithScale multiplies every delay; 0.5 plays twice as fast
func WithScale(scale float64) Option {
	return func(p *Pacer) {
		if scale >= 0 {
			p.scale = scale
		}
	}
}

// WithEnabled turns pacing on or off. A disabled pacer has no delays.
func WithEnabled(enabled bool) Option {
	return func(p *Pacer) {
		p.enabled = enabled
	}
}

// New creates a pacer on clock; nil means wall time
func New(clock quartz.Clock, opts ...Option) *Pacer {
	if clock == nil {
		clock = quartz.NewReal()
	}
	p := &Pacer{
		clock:   clock,
		timings: DefaultTimings(),
		scale:   1,
		enabled: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enabled reports whether the pacer delays anything
func (p *Pacer) Enabled() bool {
	return p.enabled && p.scale > 0
}

// Delay returns how long to wait before showing ev
func (p *Pacer) Delay(ev game.Event) time.Duration {
	if !p.Enabled() {
		return 0
	}
	return p.scaled(p.base(ev))
}

// ResetDelay returns how long a settled baccarat coup stays on the table
func (p *Pacer) ResetDelay() time.Duration {
	if !p.Enabled() {
		return 0
	}
	return p.scaled(p.timings.ResetAfter)
}

func (p *Pacer) scaled(d time.Duration) time.Duration {
	return time.Duration(float64(d) * p.scale)
}

func (p *Pacer) base(ev game.Event) time.Duration {
	state := ev.State()
	switch e := ev.(type) {
	case game.CardDealtEvent:
		if state.Game == game.Baccarat {
			switch {
			case e.Seat == game.PlayerSeat && e.Index == 0:
				return 0
			case e.Index == 2:
				return p.timings.BaccaratCard + p.timings.BeforeThird
			default:
				return p.timings.BaccaratCard
			}
		}
		switch state.Phase {
		case game.Dealing:
			if e.Seat == game.PlayerSeat && e.Index == 0 {
				return 0
			}
			return p.timings.BetweenCards
		case game.DealerTurn:
			return p.timings.DealerDraw
		default:
			return 0
		}
	case game.HoleRevealedEvent:
		if state.Phase == game.DealerTurn {
			return p.timings.BeforeReveal
		}
		return p.timings.NaturalCheck
	case game.PhaseChangeEvent:
		switch {
		case e.To == game.Dealing:
			return p.timings.BeforeDeal
		case e.From == game.Dealing && e.To == game.PlayerTurn:
			return p.timings.NaturalCheck
		case state.Game == game.Baccarat && e.To == game.Settled:
			return p.timings.BaccaratCard
		}
	}
	return 0
}

// Schedule records that ev is being shown now and returns its delay. Due
// reports false until that delay has elapsed on the pacer's clock.
func (p *Pacer) Schedule(ev game.Event) time.Duration {
	d := p.Delay(ev)
	p.readyAt = p.clock.Now().Add(d)
	return d
}

// Due reports whether the last scheduled delay has elapsed
func (p *Pacer) Due() bool {
	return !p.clock.Now().Before(p.readyAt)
}

// After returns a channel closed once d has elapsed on the pacer's clock,
// and a function releasing the timer early
func (p *Pacer) After(d time.Duration) (<-chan struct{}, func()) {
	done := make(chan struct{})
	if d <= 0 {
		close(done)
		return done, func() {}
	}
	timer := p.clock.AfterFunc(d, func() {
		close(done)
	})
	return done, func() { timer.Stop() }
}

// Wait blocks for d on the pacer's clock, or until ctx is done
func (p *Pacer) Wait(ctx context.Context, d time.Duration) error {
	done, stop := p.After(d)
	defer stop()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
