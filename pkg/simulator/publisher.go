package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openfmb-sim/battery-sim-go/pkg/device"
	"github.com/openfmb-sim/battery-sim-go/pkg/log"
	"github.com/openfmb-sim/battery-sim-go/pkg/metrics"
	"github.com/openfmb-sim/battery-sim-go/pkg/profile"
	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
	"github.com/openfmb-sim/battery-sim-go/pkg/wire"
)

// Publisher defaults.
const (
	DefaultInterval   = time.Second
	DefaultEventEvery = 10
)

// ErrNotControl is returned by HandleControl for envelopes that do not
// carry a control profile.
var ErrNotControl = errors.New("not a control profile")

// Sink receives encoded profile envelopes.
type Sink interface {
	Publish(ctx context.Context, kind schema.ProfileKind, data []byte) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, kind schema.ProfileKind, data []byte) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, kind schema.ProfileKind, data []byte) error {
	return f(ctx, kind, data)
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithClock sets the clock used for profile and reading timestamps.
func WithClock(c profile.Clock) PublisherOption {
	return func(p *Publisher) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLogger sets the publication logger.
func WithLogger(l log.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = log.OrNoop(l)
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithSlog sets the operational logger.
func WithSlog(l *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.slog = l
		}
	}
}

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithEventEvery publishes an event profile every n ticks.
func WithEventEvery(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.eventEvery = n
		}
	}
}

// Publisher steps a battery and publishes its profiles.
type Publisher struct {
	identity device.Identity
	battery  *Battery
	sink     Sink

	clock   profile.Clock
	builder *profile.Builder
	logger  log.Logger
	metrics *metrics.Metrics
	slog    *slog.Logger

	interval   time.Duration
	eventEvery int
	sessionID  string

	mu    sync.Mutex
	ticks int
}

// NewPublisher creates a publisher for the battery identified by id.
func NewPublisher(id device.Identity, battery *Battery, sink Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		identity:   id,
		battery:    battery,
		sink:       sink,
		clock:      profile.SystemClock{},
		logger:     log.NoopLogger{},
		slog:       slog.Default(),
		interval:   DefaultInterval,
		eventEvery: DefaultEventEvery,
		sessionID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.builder = profile.NewBuilder(profile.WithClock(p.clock))
	return p
}

// SessionID returns the ID recorded in every publication log event.
func (p *Publisher) SessionID() string {
	return p.sessionID
}

// Battery returns the simulated battery.
func (p *Publisher) Battery() *Battery {
	return p.battery
}

// Run ticks until ctx is cancelled and returns ctx.Err().
// Tick failures are logged and do not stop the loop.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.slog.Info("publisher started",
		"device", p.identity.String(),
		"session_id", p.sessionID,
		"interval", p.interval,
		"event_every", p.eventEvery)

	for {
		select {
		case <-ctx.Done():
			p.slog.Info("publisher stopped", "ticks", p.Ticks())
			return ctx.Err()
		case <-ticker.C:
			if err := p.Tick(ctx); err != nil && ctx.Err() == nil {
				p.slog.Warn("tick failed", "error", err)
			}
		}
	}
}

// Ticks returns the number of completed ticks.
func (p *Publisher) Ticks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticks
}

// Tick advances the battery by one interval, publishes a reading profile
// and, every EventEvery ticks, an event profile.
func (p *Publisher) Tick(ctx context.Context) error {
	p.battery.Step(p.interval)
	p.updateGauges()

	p.mu.Lock()
	p.ticks++
	publishEvent := p.ticks%p.eventEvery == 0
	p.mu.Unlock()

	err := p.PublishReading(ctx)
	if publishEvent {
		err = errors.Join(err, p.PublishEvent(ctx))
	}
	return err
}

// PublishReading builds and publishes a reading profile. The clock is read
// once; the readings and the profile share that instant.
func (p *Publisher) PublishReading(ctx context.Context) error {
	now := p.clock.Now()
	ts, err := schema.TimestampFor(now)
	if err != nil {
		return p.fail(p.newEvent(log.DirectionOut, schema.KindReading), log.StageBuild, err)
	}
	b := profile.NewBuilder(profile.WithClock(profile.FixedClock(now)))
	prof, err := b.ReadingProfile(p.identity, p.battery.Readings(ts))
	if err != nil {
		return p.fail(p.newEvent(log.DirectionOut, schema.KindReading), log.StageBuild, err)
	}
	return p.publish(ctx, prof)
}

// PublishEvent builds and publishes an event profile.
func (p *Publisher) PublishEvent(ctx context.Context) error {
	s := p.battery.State()
	prof, err := p.builder.EventProfile(p.identity, s.Connected, s.IsCharging(), ModeName(s.Mode), s.StateOfCharge)
	if err != nil {
		return p.fail(p.newEvent(log.DirectionOut, schema.KindEvent), log.StageBuild, err)
	}
	return p.publish(ctx, prof)
}

// HandleControl decodes a control envelope and applies it to the battery.
func (p *Publisher) HandleControl(data []byte) error {
	event := p.newEvent(log.DirectionIn, schema.KindControl)
	event.LogicalDeviceID = ""
	event.SetPayload(data)

	env, err := wire.DecodeEnvelope(data)
	if err != nil {
		return p.fail(event, log.StageDecode, err)
	}
	event.Kind = env.Kind
	event.MessageID = env.MessageID
	if env.Kind != schema.KindControl {
		return p.fail(event, log.StageApply, fmt.Errorf("%w: %s", ErrNotControl, env.Kind))
	}

	prof, err := env.Profile()
	if err != nil {
		return p.fail(event, log.StageDecode, err)
	}
	ctrl := prof.(*schema.BatteryControlProfile)
	event.LogicalDeviceID = ctrl.LogicalDeviceID

	applied, err := p.battery.ApplyControl(p.identity.LogicalDeviceID, ctrl)
	if err != nil {
		return p.fail(event, log.StageApply, err)
	}
	for _, controlType := range applied {
		p.metrics.ObserveControl(controlType)
	}
	p.updateGauges()
	p.logger.Log(event)

	s := p.battery.State()
	p.slog.Info("control applied",
		"msg_id", env.MessageID,
		"controls", applied,
		"power_kw", s.PowerKW,
		"mode", ModeName(s.Mode),
		"islanded", s.Islanded)
	return nil
}

func (p *Publisher) publish(ctx context.Context, prof schema.Profile) error {
	kind := prof.Kind()
	event := p.newEvent(log.DirectionOut, kind)

	msgID := uuid.NewString()
	data, err := wire.EncodeProfileWithID(prof, msgID)
	if err != nil {
		return p.fail(event, log.StageEncode, err)
	}
	event.MessageID = msgID
	event.SetPayload(data)

	if err := p.sink.Publish(ctx, kind, data); err != nil {
		return p.fail(event, log.StagePublish, fmt.Errorf("publish %s profile: %w", kind, err))
	}

	p.metrics.ObserveProfile(kind, len(data))
	p.logger.Log(event)
	return nil
}

func (p *Publisher) fail(event log.Event, stage log.Stage, err error) error {
	event.Error = &log.ErrorEventData{Stage: stage, Message: err.Error()}
	p.metrics.ObserveError(event.Kind)
	p.logger.Log(event)
	return err
}

func (p *Publisher) newEvent(dir log.Direction, kind schema.ProfileKind) log.Event {
	return log.Event{
		Timestamp:       p.clock.Now(),
		SessionID:       p.sessionID,
		Direction:       dir,
		Kind:            kind,
		LogicalDeviceID: p.identity.LogicalDeviceID,
	}
}

func (p *Publisher) updateGauges() {
	s := p.battery.State()
	p.metrics.SetBatteryState(p.identity.LogicalDeviceID, s.StateOfCharge, s.PowerKW, s.Islanded)
}
