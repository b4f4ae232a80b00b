package watchdog

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "termwatch/watchdog"

type instruments struct {
	cycles        metric.Int64Counter
	alerts        metric.Int64Counter
	cycleDuration metric.Float64Histogram
	levelPercent  metric.Float64Gauge
	openIncidents metric.Int64Gauge
}

// newInstruments builds the watchdog instruments from the global
// MeterProvider. On error the returned instruments are still usable no-ops.
func newInstruments() (*instruments, error) {
	meter := otel.Meter(instrumentationName)

	var errs []error
	track := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var in instruments
	var err error

	in.cycles, err = meter.Int64Counter("watchdog.cycles",
		metric.WithDescription("Watchdog cycles by outcome"))
	track(err)

	in.alerts, err = meter.Int64Counter("watchdog.alerts",
		metric.WithDescription("Alert candidates by kind and outcome"))
	track(err)

	in.cycleDuration, err = meter.Float64Histogram("watchdog.cycle.duration",
		metric.WithDescription("Time spent in one cycle"),
		metric.WithUnit("s"))
	track(err)

	in.levelPercent, err = meter.Float64Gauge("watchdog.vessel.level_percent",
		metric.WithDescription("Vessel fill level from the latest snapshot"),
		metric.WithUnit("%"))
	track(err)

	in.openIncidents, err = meter.Int64Gauge("watchdog.incidents.open",
		metric.WithDescription("Open safety incidents in the latest snapshot"))
	track(err)

	return &in, errors.Join(errs...)
}

func (in *instruments) recordCycle(ctx context.Context, res CycleResult) {
	outcome := "ok"
	if res.Failed() {
		outcome = "failed"
	}
	in.cycles.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	in.cycleDuration.Record(ctx, res.FinishedAt.Sub(res.StartedAt).Seconds())

	for _, a := range res.Alerts {
		in.alerts.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", string(a.Kind)),
			attribute.String("outcome", string(a.Outcome)),
		))
	}
}
