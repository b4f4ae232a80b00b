// Package watchdog drives the poll, evaluate and dispatch cycle that turns
// terminal snapshots into deduplicated alerts.
package watchdog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"termwatch/internal/alert"
	"termwatch/internal/forecast"
	"termwatch/internal/logger"
	"termwatch/internal/snapshot"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SnapshotBuilder produces the per-cycle Snapshot.
type SnapshotBuilder interface {
	Build(ctx context.Context, now time.Time) (snapshot.Snapshot, error)
}

// Dispatcher delivers one alert payload.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload alert.Payload) error
}

// Config holds configuration for the watchdog loop.
type Config struct {
	PollInterval time.Duration // default 60s
	Forecast     forecast.Params
}

// Watchdog runs cycles. It holds no per-cycle state of its own; everything
// that survives a cycle lives in State.
type Watchdog struct {
	builder    SnapshotBuilder
	dispatcher Dispatcher
	config     Config
	logger     *slog.Logger
	clock      func() time.Time
	metrics    *instruments
	tracer     trace.Tracer
	done       chan struct{}
}

// Option customizes a Watchdog.
type Option func(*Watchdog)

// WithClock overrides the time source. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(w *Watchdog) { w.clock = clock }
}

// New creates a Watchdog.
func New(builder SnapshotBuilder, dispatcher Dispatcher, config Config, log *slog.Logger, opts ...Option) *Watchdog {
	if config.PollInterval <= 0 {
		config.PollInterval = 60 * time.Second
	}

	w := &Watchdog{
		builder:    builder,
		dispatcher: dispatcher,
		config:     config,
		logger:     log,
		clock:      time.Now,
		tracer:     otel.Tracer(instrumentationName),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	m, err := newInstruments()
	if err != nil {
		log.Warn("Some watchdog metrics are unavailable", "error", err)
	}
	w.metrics = m

	return w
}

// Run loops until ctx is cancelled: one cycle, then sleep for the poll
// interval, regardless of how the cycle ended.
func (w *Watchdog) Run(ctx context.Context, state *State) error {
	defer close(w.done)

	w.logger.Info("Predictive watchdog started",
		"poll_interval", w.config.PollInterval,
		"dedup_backing", state.Dedup.Name(),
		"known_incidents", len(state.known),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watchdog stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-timer.C:
		}

		res := w.RunCycle(ctx, state, w.clock())
		w.report(ctx, res)

		timer.Reset(w.config.PollInterval)
	}
}

// Done returns a channel that is closed when Run has returned.
func (w *Watchdog) Done() <-chan struct{} {
	return w.done
}

// RunCycle performs one poll, evaluate and dispatch pass. Errors and panics
// are captured in the result; RunCycle itself never fails.
func (w *Watchdog) RunCycle(ctx context.Context, state *State, now time.Time) (res CycleResult) {
	res = CycleResult{
		CycleID:   uuid.NewString(),
		StartedAt: now,
		Phase:     PhaseIdle,
	}
	ctx = logger.WithCycleID(ctx, res.CycleID)
	log := logger.FromContext(ctx, w.logger)

	ctx, span := w.tracer.Start(ctx, "watchdog.cycle",
		trace.WithAttributes(attribute.String("cycle.id", res.CycleID)),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("cycle panic: %v", r)
		}
		if res.Err != nil {
			res.Phase = PhaseFailed
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		} else {
			res.Phase = PhaseSleeping
		}
		res.FinishedAt = w.clock()
	}()

	res.Phase = PhasePolling
	snap, err := w.builder.Build(ctx, now)
	if err != nil {
		res.Err = fmt.Errorf("build snapshot: %w", err)
		return res
	}
	w.metrics.levelPercent.Record(ctx, snap.Inventory.LevelPercent)
	w.metrics.openIncidents.Record(ctx, int64(len(snap.OpenIncidents)))

	res.Phase = PhaseEvaluating
	res.NewIncidents = state.DiffIncidents(snap.IncidentIDs())
	batch := Candidates(snap, res.NewIncidents, w.config.Forecast)
	log.Debug("Cycle evaluated",
		"bays", len(snap.Bays),
		"open_incidents", len(snap.OpenIncidents),
		"overdue_waits", len(snap.OverdueWaits),
		"level_percent", snap.Inventory.LevelPercent,
		"discharge_tph", snap.Inventory.DischargeRateTPH,
		"candidates", len(batch),
	)

	res.Phase = PhaseDispatching
	for _, a := range batch {
		res.Alerts = append(res.Alerts, w.gateAndDispatch(ctx, log, state, a, now))
	}

	return res
}

// gateAndDispatch handles one candidate. Its failures stay local to it.
func (w *Watchdog) gateAndDispatch(ctx context.Context, log *slog.Logger, state *State, a alert.Alert, now time.Time) (out AlertOutcome) {
	out = AlertOutcome{Key: a.Key, Kind: a.Kind, Priority: a.Priority}

	defer func() {
		if r := recover(); r != nil {
			out.Outcome = OutcomeDispatchFailed
			out.Err = fmt.Errorf("dispatch panic: %v", r)
			log.Error("Alert dispatch panicked", "alert_id", a.Key, "error", out.Err)
		}
	}()

	send, err := state.Dedup.ShouldSend(ctx, a.Key, now)
	if err != nil {
		out.Outcome = OutcomeGateFailed
		out.Err = err
		log.Error("Dedup check failed", "alert_id", a.Key, "backing", state.Dedup.Name(), "error", err)
		return out
	}
	if !send {
		out.Outcome = OutcomeSuppressed
		log.Debug("Alert suppressed by dedup window", "alert_id", a.Key)
		return out
	}

	ctx, span := w.tracer.Start(ctx, "watchdog.dispatch",
		trace.WithAttributes(
			attribute.String("alert.id", a.Key),
			attribute.String("alert.kind", string(a.Kind)),
			attribute.String("alert.priority", string(a.Priority)),
		),
		trace.WithSpanKind(trace.SpanKindProducer),
	)
	defer span.End()

	// The dedup key is already consumed here. A failed delivery is not
	// retried until the window expires.
	if err := w.dispatcher.Dispatch(ctx, a.Payload(w.clock())); err != nil {
		out.Outcome = OutcomeDispatchFailed
		out.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("Alert dispatch failed", "alert_id", a.Key, "priority", a.Priority, "error", err)
		return out
	}

	out.Outcome = OutcomeSent
	log.Warn("Alert sent", "alert_id", a.Key, "priority", a.Priority, "headline", a.Headline)
	return out
}

func (w *Watchdog) report(ctx context.Context, res CycleResult) {
	w.metrics.recordCycle(ctx, res)

	log := w.logger.With("cycle_id", res.CycleID)
	if res.Failed() {
		log.Error("Watchdog cycle failed", "error", res.Err, "duration", res.FinishedAt.Sub(res.StartedAt))
		return
	}
	log.Info("Watchdog cycle complete",
		"new_incidents", len(res.NewIncidents),
		"candidates", len(res.Alerts),
		"sent", res.Count(OutcomeSent),
		"suppressed", res.Count(OutcomeSuppressed),
		"failed", res.Count(OutcomeDispatchFailed)+res.Count(OutcomeGateFailed),
		"duration", res.FinishedAt.Sub(res.StartedAt),
	)
}
