package clinicauth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Manishmatre/clinicauth/gateway"
	"github.com/Manishmatre/clinicauth/token"
)

// Refresh re-fetches the profile for an already authenticated session,
// reconciling it with the backend. Callers typically run it on an
// interval or when the application regains focus.
//
// The failure ladder mirrors hydration: a locally expired or
// server-rejected token signs the session out; any other failure keeps
// the session alive on its current data, flagged degraded.
func (m *Manager) Refresh(ctx context.Context) RefreshResult {
	gen, err := m.begin()
	if err != nil {
		return RefreshResult{Outcome: RefreshSignedOut, Kind: KindSuperseded}
	}

	sess := m.Session()
	if !sess.Authenticated || sess.Token == "" {
		return m.refreshDone(ctx, RefreshSignedOut, KindNoToken, nil)
	}

	if token.Expired(sess.Token, time.Now(), m.cfg.Token.ExpirySkew) {
		m.logoutIfCurrent(ctx, gen, KindTokenExpired)
		return m.refreshDone(ctx, RefreshSignedOut, KindTokenExpired, nil)
	}

	user, err := m.fetchProfile(ctx, sess.Token)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			m.logoutIfCurrent(ctx, gen, KindTokenExpired)
			return m.refreshDone(ctx, RefreshSignedOut, KindTokenExpired, nil)
		}
		kind := kindFromError(err)
		m.commit(gen, func(s *Session) { s.Degraded = true })
		return m.refreshDone(ctx, RefreshDegraded, kind, sess.User)
	}

	rec, recErr := m.cache.LoadRecord(ctx)
	if recErr != nil {
		rec = nil
	}
	clinic, clinicDegraded := m.resolveClinic(ctx, sess.Token, user, rec)

	if m.current(gen) {
		m.persistRecord(ctx, user, clinic)
	}
	committed := m.commit(gen, func(s *Session) {
		s.User = cloneUser(user)
		s.Clinic = cloneClinic(clinic)
		s.Degraded = clinicDegraded
	})
	if !committed {
		if err := m.cache.ClearRecord(ctx); err != nil {
			log.Print("clinicauth: cached record clear failed")
		}
		return RefreshResult{Outcome: RefreshSignedOut, Kind: KindSuperseded, Session: m.Session()}
	}
	if clinicDegraded {
		m.metricInc(MetricCacheFallback)
		return m.refreshDone(ctx, RefreshDegraded, KindNetworkUnavailable, user)
	}
	return m.refreshDone(ctx, RefreshFresh, KindNone, user)
}

func (m *Manager) refreshDone(ctx context.Context, outcome RefreshOutcome, kind ErrorKind, user *User) RefreshResult {
	switch outcome {
	case RefreshFresh:
		m.metricInc(MetricRefreshFresh)
	case RefreshDegraded:
		m.metricInc(MetricRefreshDegraded)
	default:
		m.metricInc(MetricRefreshSignedOut)
	}
	m.emitEvent(ctx, EventRefresh, outcome != RefreshSignedOut, user, kind, nil, func() map[string]string {
		return map[string]string{"outcome": outcome.String()}
	})
	return RefreshResult{Outcome: outcome, Kind: kind, Session: m.Session()}
}
