package clinicauth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Manishmatre/clinicauth/cache"
	"github.com/Manishmatre/clinicauth/gateway"
	"github.com/Manishmatre/clinicauth/identity"
	"github.com/Manishmatre/clinicauth/token"
)

// Hydrate reconstructs the session from persisted state at startup. It
// never returns an error: every failure funnels into a terminal outcome,
// either signed out or authenticated (possibly degraded to cached data).
//
// The fallback chain: no token means signed out; an expired token forces
// the logout procedure; otherwise the session is provisionally
// authenticated, seeded from the cache for optimistic display, and the
// profile is fetched (primary endpoint, then the legacy endpoint once).
// If both fetches fail and a cached record exists, hydration succeeds
// degraded; with no cache it signs out. A transient backend hiccup never
// evicts a valid session, and an unrecoverable state never masquerades
// as authenticated.
func (m *Manager) Hydrate(ctx context.Context) HydrationResult {
	gen, err := m.begin()
	if err != nil {
		return HydrationResult{Outcome: HydrationSignedOut, Kind: KindSuperseded}
	}
	m.commit(gen, func(s *Session) {
		s.Hydrating = true
	})

	tok, err := m.tokens.Get(ctx)
	if err != nil {
		// Unreadable credential storage is indistinguishable from no
		// credential; hydration must not wedge on it.
		log.Print("clinicauth: token read failed")
		tok = ""
	}
	if tok == "" {
		m.commit(gen, func(s *Session) { *s = Session{} })
		return m.hydrationDone(ctx, HydrationSignedOut, KindNoToken, nil)
	}

	if token.Expired(tok, time.Now(), m.cfg.Token.ExpirySkew) {
		m.logoutIfCurrent(ctx, gen, KindTokenExpired)
		return m.hydrationDone(ctx, HydrationSignedOut, KindTokenExpired, nil)
	}

	// Token is locally valid: provisionally authenticated, seeded from
	// the cache while the network resolves. Hydrating stays true so the
	// guard keeps pending instead of acting on provisional data.
	rec, recErr := m.cache.LoadRecord(ctx)
	if recErr != nil {
		log.Print("clinicauth: cached record read failed")
		rec = nil
	}
	m.commit(gen, func(s *Session) {
		s.Token = tok
		s.Authenticated = true
		s.Hydrating = true
		if rec != nil {
			s.User = cloneUser(rec.User)
			s.Clinic = cloneClinic(rec.Clinic)
			s.Degraded = true
		}
	})

	user, err := m.fetchProfile(ctx, tok)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			// The server rejected the token outright; no cache fallback
			// may keep this session alive.
			m.logoutIfCurrent(ctx, gen, KindTokenExpired)
			return m.hydrationDone(ctx, HydrationSignedOut, KindTokenExpired, nil)
		}
		if rec != nil && rec.User != nil {
			kind := kindFromError(err)
			m.commit(gen, func(s *Session) {
				s.Hydrating = false
				s.Degraded = true
				s.User = cloneUser(rec.User)
				s.Clinic = cloneClinic(rec.Clinic)
			})
			m.metricInc(MetricCacheFallback)
			return m.hydrationDone(ctx, HydrationDegraded, kind, rec.User)
		}
		m.logoutIfCurrent(ctx, gen, kindFromError(err))
		return m.hydrationDone(ctx, HydrationSignedOut, kindFromError(err), nil)
	}

	clinic, clinicDegraded := m.resolveClinic(ctx, tok, user, rec)

	if m.current(gen) {
		m.persistRecord(ctx, user, clinic)
	}
	committed := m.commit(gen, func(s *Session) {
		*s = Session{
			Token:         tok,
			User:          cloneUser(user),
			Clinic:        cloneClinic(clinic),
			Authenticated: true,
			Degraded:      clinicDegraded,
		}
	})
	if !committed {
		// Logout won the race after our record write; leave no mirror
		// behind that could resurrect the session on the next boot.
		if err := m.cache.ClearRecord(ctx); err != nil {
			log.Print("clinicauth: cached record clear failed")
		}
		return HydrationResult{Outcome: HydrationSignedOut, Kind: KindSuperseded, Session: m.Session()}
	}
	if clinicDegraded {
		m.metricInc(MetricCacheFallback)
		return m.hydrationDone(ctx, HydrationDegraded, KindNetworkUnavailable, user)
	}
	return m.hydrationDone(ctx, HydrationFresh, KindNone, user)
}

func (m *Manager) hydrationDone(ctx context.Context, outcome HydrationOutcome, kind ErrorKind, user *User) HydrationResult {
	switch outcome {
	case HydrationFresh:
		m.metricInc(MetricHydrationFresh)
	case HydrationDegraded:
		m.metricInc(MetricHydrationDegraded)
	default:
		m.metricInc(MetricHydrationSignedOut)
	}
	m.emitEvent(ctx, EventHydration, outcome != HydrationSignedOut, user, kind, nil, func() map[string]string {
		return map[string]string{"outcome": outcome.String()}
	})
	return HydrationResult{Outcome: outcome, Kind: kind, Session: m.Session()}
}

// fetchProfile tries the primary profile endpoint, then the legacy one
// exactly once. An outright token rejection or a malformed success is
// final; only reachability failures and 404s trigger the retry.
func (m *Manager) fetchProfile(ctx context.Context, tok string) (*identity.User, error) {
	user, err := m.gw.Profile(ctx, tok)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, gateway.ErrUnauthorized) || errors.Is(err, gateway.ErrMalformedResponse) {
		return nil, err
	}
	return m.gw.ProfileLegacy(ctx, tok)
}

// resolveClinic fetches the user's clinic when one is referenced. The
// clinic lookup failing is never fatal: it falls back to the cached
// clinic when present, reported as a degraded result.
func (m *Manager) resolveClinic(ctx context.Context, tok string, user *identity.User, rec *cache.Record) (*identity.Clinic, bool) {
	if user == nil || user.ClinicID == "" {
		return nil, false
	}
	clinic, err := m.gw.Clinic(ctx, tok, user.ClinicID)
	if err == nil {
		return clinic, false
	}
	if rec != nil && rec.Clinic != nil {
		return rec.Clinic, true
	}
	return nil, true
}
