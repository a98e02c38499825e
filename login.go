package clinicauth

import (
	"context"
	"log"
	"time"

	"github.com/Manishmatre/clinicauth/cache"
	"github.com/Manishmatre/clinicauth/gateway"
)

// Login authenticates against the backend and, on success, commits the
// session atomically with its persisted mirrors: the login is not
// complete until the in-memory state and the persisted state agree, so
// an immediate reload cannot lose it.
//
// Expected rejections (wrong password, role mismatch, unverified email)
// come back as a failed LoginResult with the matching kind and leave the
// session untouched. Login never panics and never returns an error.
func (m *Manager) Login(ctx context.Context, creds Credentials) LoginResult {
	gen, err := m.begin()
	if err != nil {
		return LoginResult{Kind: KindSuperseded, Message: err.Error()}
	}

	resp, err := m.gw.Login(ctx, creds)
	if err != nil {
		kind := kindFromError(err)
		m.metricInc(MetricLoginFailure)
		m.emitEvent(ctx, EventLoginFailure, false, nil, kind, err, func() map[string]string {
			return map[string]string{"email": creds.Email, "role": string(creds.Role)}
		})
		return LoginResult{Kind: kind, Message: userMessage(kind, err)}
	}

	res := m.completeAuth(ctx, gen, resp, creds.Email)
	if res.Success {
		m.metricInc(MetricLoginSuccess)
		m.emitEvent(ctx, EventLoginSuccess, true, res.User, KindNone, nil, nil)
	} else {
		m.metricInc(MetricLoginFailure)
		m.emitEvent(ctx, EventLoginFailure, false, nil, res.Kind, nil, nil)
	}
	return res
}

// completeAuth turns a token-bearing gateway response into a committed
// session. Shared by Login and the Register methods.
func (m *Manager) completeAuth(ctx context.Context, gen uint64, resp *gateway.AuthResponse, email string) LoginResult {
	user := resp.User
	if user == nil {
		// The response carried a token but no user payload: do the
		// hydrator-style profile fetch immediately rather than leaving
		// an authenticated session without a user.
		fetched, err := m.fetchProfile(ctx, resp.Token)
		if err != nil {
			kind := kindFromError(err)
			return LoginResult{Kind: kind, Message: userMessage(kind, err)}
		}
		user = fetched
	}

	clinic := resp.Clinic
	if clinic == nil && user.ClinicID != "" {
		fetched, err := m.gw.Clinic(ctx, resp.Token, user.ClinicID)
		if err == nil {
			clinic = fetched
		}
		// Non-fatal: a session may exist before its clinic resolves.
	}

	if !m.current(gen) {
		return LoginResult{Kind: KindSuperseded, Message: userMessage(KindSuperseded, nil)}
	}

	// Mirror write order matters: record before token, so a reload that
	// lands between the two writes sees "no token" (signed out) rather
	// than "token present, user absent".
	rec := &cache.Record{User: cloneUser(user), Clinic: cloneClinic(clinic), SavedAt: time.Now()}
	if err := m.cache.SaveRecord(ctx, rec); err != nil {
		return LoginResult{Kind: KindStorageFailure, Message: userMessage(KindStorageFailure, err)}
	}
	if err := m.tokens.Set(ctx, resp.Token); err != nil {
		if clearErr := m.cache.ClearRecord(ctx); clearErr != nil {
			log.Print("clinicauth: cached record clear failed")
		}
		return LoginResult{Kind: KindStorageFailure, Message: userMessage(KindStorageFailure, err)}
	}

	committed := m.commit(gen, func(s *Session) {
		*s = Session{
			Token:         resp.Token,
			User:          cloneUser(user),
			Clinic:        cloneClinic(clinic),
			Authenticated: true,
		}
	})
	if !committed {
		// A logout (or newer attempt) won while we were persisting; its
		// clears ran before our writes, so undo them.
		if err := m.tokens.Clear(ctx); err != nil {
			log.Print("clinicauth: token clear failed")
		}
		if err := m.cache.ClearRecord(ctx); err != nil {
			log.Print("clinicauth: cached record clear failed")
		}
		return LoginResult{Kind: KindSuperseded, Message: userMessage(KindSuperseded, nil)}
	}

	// Convenience state; best-effort only.
	if email != "" {
		if err := m.cache.SetLastEmail(ctx, email); err != nil {
			log.Print("clinicauth: last email write failed")
		}
	}
	if err := m.cache.SetPreferredRole(ctx, user.Role); err != nil {
		log.Print("clinicauth: preferred role write failed")
	}

	redirect, err := m.cache.TakeRedirectPath(ctx)
	if err != nil || redirect == "" {
		redirect = HomePath(user.Role)
	}

	return LoginResult{
		Success:    true,
		User:       cloneUser(user),
		RedirectTo: redirect,
	}
}
