package clinicauth

import "testing"

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricGuardRedirect)

	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != 2 {
		t.Fatalf("login success = %d, want 2", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricGuardRedirect] != 1 {
		t.Fatalf("guard redirect = %d, want 1", snap.Counters[MetricGuardRedirect])
	}
	if snap.Counters[MetricLogout] != 0 {
		t.Fatalf("logout = %d, want 0", snap.Counters[MetricLogout])
	}

	// Snapshots are copies.
	snap.Counters[MetricLoginSuccess] = 99
	if m.Snapshot().Counters[MetricLoginSuccess] != 2 {
		t.Fatal("snapshot mutation leaked into live counters")
	}
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Disabled: true})
	m.Inc(MetricLoginSuccess)
	if got := m.Snapshot().Counters[MetricLoginSuccess]; got != 0 {
		t.Fatalf("disabled counter = %d, want 0", got)
	}

	var nilMetrics *Metrics
	nilMetrics.Inc(MetricLogout)
	if snap := nilMetrics.Snapshot(); snap.Counters == nil {
		t.Fatal("nil metrics snapshot has nil map")
	}
}

func TestMetricDefsCoverEveryID(t *testing.T) {
	if len(MetricDefs) != int(metricIDCount) {
		t.Fatalf("MetricDefs has %d entries, want %d", len(MetricDefs), metricIDCount)
	}
	seen := make(map[MetricID]bool, len(MetricDefs))
	names := make(map[string]bool, len(MetricDefs))
	for _, def := range MetricDefs {
		if seen[def.ID] {
			t.Fatalf("duplicate MetricDef for id %d", def.ID)
		}
		seen[def.ID] = true
		if def.Name == "" || names[def.Name] {
			t.Fatalf("bad or duplicate metric name %q", def.Name)
		}
		names[def.Name] = true
	}
}
