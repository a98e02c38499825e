package otel

import (
	"context"
	"errors"
	"fmt"

	clinicauth "github.com/Manishmatre/clinicauth"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() clinicauth.MetricsSnapshot
	EventsDropped() uint64
}

type observedCounter struct {
	id         clinicauth.MetricID
	instrument metric.Int64ObservableCounter
}

// Exporter bridges session counters into OpenTelemetry as observable
// counters. One callback reads a snapshot per collection cycle; the
// exporter never owns the MeterProvider and never mutates manager
// state.
type Exporter struct {
	source        metricsSource
	registration  metric.Registration
	counters      []observedCounter
	eventsDropped metric.Int64ObservableCounter
}

// NewExporter registers observable instruments for every manager
// counter on meter.
func NewExporter(meter metric.Meter, manager *clinicauth.Manager) (*Exporter, error) {
	return NewExporterFromSource(meter, manager)
}

// NewExporterFromSource is NewExporter over any snapshot source, which
// tests use to feed canned snapshots.
func NewExporterFromSource(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &Exporter{
		source:   source,
		counters: make([]observedCounter, 0, len(clinicauth.MetricDefs)),
	}

	observables := make([]metric.Observable, 0, len(clinicauth.MetricDefs)+1)
	for _, def := range clinicauth.MetricDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	eventsDropped, err := meter.Int64ObservableCounter(
		"clinicauth_events_dropped_total",
		metric.WithDescription("Session events dropped due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create events dropped counter: %w", err)
	}
	exporter.eventsDropped = eventsDropped
	observables = append(observables, eventsDropped)

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.MetricsSnapshot()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
		}
		observer.ObserveInt64(exporter.eventsDropped, int64(exporter.source.EventsDropped()))
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

// Close unregisters the collection callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
