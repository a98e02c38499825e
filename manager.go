package clinicauth

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Manishmatre/clinicauth/cache"
	"github.com/Manishmatre/clinicauth/gateway"
	"github.com/Manishmatre/clinicauth/token"
)

// Manager is the long-lived session owner. It is the sole writer of
// session state and of its two persisted mirrors (token store, session
// cache); everything else reads snapshots via Session.
//
// Every hydration, login, and refresh attempt captures the generation
// counter before doing network I/O and commits its result only if the
// generation is unchanged. Logout bumps the generation first, so it wins
// any race against in-flight completions.
type Manager struct {
	cfg     Config
	gw      *gateway.Client
	tokens  token.Store
	cache   cache.Store
	events  *eventDispatcher
	metrics *Metrics

	mu     sync.Mutex
	gen    uint64
	sess   Session
	closed bool
}

// Session returns a deep-copied snapshot of the current session.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.clone()
}

// begin snapshots the current generation for a new attempt.
func (m *Manager) begin() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrManagerClosed
	}
	return m.gen, nil
}

// current reports whether gen is still the live generation.
func (m *Manager) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed && gen == m.gen
}

// commit applies fn to the session iff gen is still current. A stale
// completion silently loses; its caller decides what to roll back.
func (m *Manager) commit(gen uint64, fn func(*Session)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.gen {
		return false
	}
	fn(&m.sess)
	return true
}

// Logout unconditionally tears the session down: generation bump first
// (so in-flight completions become stale), then in-memory reset, then
// best-effort clearing of the persisted mirrors. Idempotent and safe
// from any state, including mid-hydration.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.gen++
	m.sess = Session{}
	m.mu.Unlock()

	m.clearPersisted(ctx)
	m.metricInc(MetricLogout)
	m.emitEvent(ctx, EventLogout, true, nil, KindNone, nil, func() map[string]string {
		return map[string]string{"redirect": PathLogin}
	})
}

// logoutIfCurrent is the logout procedure invoked from inside hydration
// and refresh. It only fires if gen is still live, so a stale completion
// cannot sign out a session established after it started.
func (m *Manager) logoutIfCurrent(ctx context.Context, gen uint64, kind ErrorKind) bool {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return false
	}
	m.gen++
	m.sess = Session{}
	m.mu.Unlock()

	m.clearPersisted(ctx)
	m.metricInc(MetricLogout)
	m.emitEvent(ctx, EventLogout, true, nil, kind, nil, nil)
	return true
}

// clearPersisted wipes the token and the cached record. Failures are
// logged, not returned: logout must terminate regardless, and a leftover
// record without a token is inert at the next hydration.
func (m *Manager) clearPersisted(ctx context.Context) {
	if err := m.tokens.Clear(ctx); err != nil {
		log.Print("clinicauth: token clear failed")
	}
	if err := m.cache.ClearRecord(ctx); err != nil {
		log.Print("clinicauth: cached record clear failed")
	}
	if _, err := m.cache.TakeRedirectPath(ctx); err != nil {
		log.Print("clinicauth: redirect path clear failed")
	}
}

// UpdateUser applies a partial in-place update to the current user (for
// example after a profile edit saved elsewhere) and re-syncs the cache
// mirror. No-op when signed out.
func (m *Manager) UpdateUser(ctx context.Context, fn func(*User)) {
	m.mu.Lock()
	if m.closed || !m.sess.Authenticated || m.sess.User == nil {
		m.mu.Unlock()
		return
	}
	fn(m.sess.User)
	user := cloneUser(m.sess.User)
	clinic := cloneClinic(m.sess.Clinic)
	m.mu.Unlock()

	m.persistRecord(ctx, user, clinic)
}

// UpdateClinic replaces the clinic on the current session and re-syncs
// the cache mirror. Passing nil detaches the clinic.
func (m *Manager) UpdateClinic(ctx context.Context, clinic *Clinic) {
	m.mu.Lock()
	if m.closed || !m.sess.Authenticated {
		m.mu.Unlock()
		return
	}
	m.sess.Clinic = cloneClinic(clinic)
	user := cloneUser(m.sess.User)
	m.mu.Unlock()

	m.persistRecord(ctx, user, clinic)
}

// RememberPath captures the path a signed-out user attempted, for replay
// after the next successful login. One-shot: the next login consumes it.
func (m *Manager) RememberPath(ctx context.Context, path string) error {
	return m.cache.SetRedirectPath(ctx, path)
}

// LastEmail returns the last email used to sign in, for prefilling the
// login form. Convenience only; survives logout.
func (m *Manager) LastEmail(ctx context.Context) string {
	email, err := m.cache.LastEmail(ctx)
	if err != nil {
		return ""
	}
	return email
}

// PreferredRole returns the remembered role selector value. Convenience
// only; never used for authorization.
func (m *Manager) PreferredRole(ctx context.Context) Role {
	role, err := m.cache.PreferredRole(ctx)
	if err != nil {
		return ""
	}
	return role
}

// GuardDecision records a route-guard outcome for metrics and events.
// The guard itself stays pure; its middleware adapter reports here.
func (m *Manager) GuardDecision(ctx context.Context, path string, allowed bool, reason string) {
	if allowed {
		m.metricInc(MetricGuardAllow)
		return
	}
	m.metricInc(MetricGuardRedirect)
	m.emitEvent(ctx, EventGuardRedirect, false, nil, KindNone, nil, func() map[string]string {
		return map[string]string{"path": path, "reason": reason}
	})
}

// MetricsSnapshot returns a copy of the lifecycle counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// EventsDropped reports events shed under dispatcher backpressure.
func (m *Manager) EventsDropped() uint64 {
	return m.events.Dropped()
}

// Close stops the event dispatcher and marks the manager unusable. It
// does not log the user out; persisted state survives for the next run.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.events.Close()
}

func (m *Manager) metricInc(id MetricID) {
	m.metrics.Inc(id)
}

// persistRecord writes the cache mirror, logging rather than failing:
// the in-memory session is already correct and a stale mirror only costs
// one degraded hydration after an ill-timed restart.
func (m *Manager) persistRecord(ctx context.Context, user *User, clinic *Clinic) {
	if user == nil {
		return
	}
	rec := &cache.Record{User: user, Clinic: clinic, SavedAt: time.Now()}
	if err := m.cache.SaveRecord(ctx, rec); err != nil {
		log.Print("clinicauth: cache record write failed")
	}
}
