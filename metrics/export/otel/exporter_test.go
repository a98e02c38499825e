package otel

import (
	"context"
	"sync"
	"testing"

	clinicauth "github.com/Manishmatre/clinicauth"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot clinicauth.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() clinicauth.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := clinicauth.MetricsSnapshot{
		Counters: make(map[clinicauth.MetricID]uint64, len(f.snapshot.Counters)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	return out
}

func (f *fakeSource) EventsDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("clinicauth-test")

	src := &fakeSource{
		snapshot: clinicauth.MetricsSnapshot{
			Counters: map[clinicauth.MetricID]uint64{
				clinicauth.MetricLoginSuccess:   3,
				clinicauth.MetricHydrationFresh: 1,
				clinicauth.MetricGuardRedirect:  2,
			},
		},
		dropped: 1,
	}

	exp, err := NewExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(rm.ScopeMetrics) == 0 {
		t.Fatal("expected collected metrics, got none")
	}

	found := make(map[string]bool)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
		}
	}
	for _, name := range []string{"clinicauth_login_success_total", "clinicauth_events_dropped_total"} {
		if !found[name] {
			t.Fatalf("metric %s not collected; got %v", name, found)
		}
	}
}

func TestExporterRejectsNilSource(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("clinicauth-test")

	if _, err := NewExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("err = %v, want ErrNilSource", err)
	}
	if _, err := NewExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("err = %v, want ErrNilMeter", err)
	}
}

func TestExporterCloseIsIdempotent(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("clinicauth-test")

	exp, err := NewExporterFromSource(meter, &fakeSource{})
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	if err := exp.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := exp.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	var nilExp *Exporter
	if err := nilExp.Close(); err != nil {
		t.Fatalf("nil Close failed: %v", err)
	}
}
