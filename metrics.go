package clinicauth

import "sync/atomic"

// MetricID identifies one in-process counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricHydrationFresh
	MetricHydrationDegraded
	MetricHydrationSignedOut
	MetricCacheFallback
	MetricRefreshFresh
	MetricRefreshDegraded
	MetricRefreshSignedOut
	MetricLogout
	MetricPasswordResetRequest
	MetricPasswordResetConfirm
	MetricVerificationResend
	MetricGuardAllow
	MetricGuardRedirect

	metricIDCount
)

// Metrics holds atomic counters for the session lifecycle. When disabled
// every operation is a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics creates a Metrics instance per cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: !cfg.Disabled}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot deep-copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}

// MetricDef pairs a MetricID with its exported name, for metric bridges.
type MetricDef struct {
	ID   MetricID
	Name string
	Help string
}

// MetricDefs lists every counter in exporter order.
var MetricDefs = []MetricDef{
	{MetricLoginSuccess, "clinicauth_login_success_total", "Successful logins."},
	{MetricLoginFailure, "clinicauth_login_failure_total", "Rejected or failed logins."},
	{MetricRegisterSuccess, "clinicauth_register_success_total", "Successful registrations."},
	{MetricRegisterFailure, "clinicauth_register_failure_total", "Rejected or failed registrations."},
	{MetricHydrationFresh, "clinicauth_hydration_fresh_total", "Hydrations completed with fresh server data."},
	{MetricHydrationDegraded, "clinicauth_hydration_degraded_total", "Hydrations that fell back to cached data."},
	{MetricHydrationSignedOut, "clinicauth_hydration_signed_out_total", "Hydrations that ended signed out."},
	{MetricCacheFallback, "clinicauth_cache_fallback_total", "Profile reads served from the local cache."},
	{MetricRefreshFresh, "clinicauth_refresh_fresh_total", "Refreshes completed with fresh server data."},
	{MetricRefreshDegraded, "clinicauth_refresh_degraded_total", "Refreshes that kept the current session on network failure."},
	{MetricRefreshSignedOut, "clinicauth_refresh_signed_out_total", "Refreshes that tore the session down."},
	{MetricLogout, "clinicauth_logout_total", "Logouts."},
	{MetricPasswordResetRequest, "clinicauth_password_reset_request_total", "Password reset requests."},
	{MetricPasswordResetConfirm, "clinicauth_password_reset_confirm_total", "Password reset confirmations."},
	{MetricVerificationResend, "clinicauth_verification_resend_total", "Verification email resends."},
	{MetricGuardAllow, "clinicauth_guard_allow_total", "Route guard allows."},
	{MetricGuardRedirect, "clinicauth_guard_redirect_total", "Route guard redirects."},
}
