package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Manishmatre/clinicauth"
	"github.com/Manishmatre/clinicauth/identity"
)

type staticSource struct {
	sess clinicauth.Session
}

func (s staticSource) Session() clinicauth.Session { return s.sess }

type recorderSpy struct {
	remembered string
	decisions  []string
}

func (r *recorderSpy) RememberPath(_ context.Context, path string) error {
	r.remembered = path
	return nil
}

func (r *recorderSpy) GuardDecision(_ context.Context, path string, allowed bool, reason string) {
	verdict := "allow"
	if !allowed {
		verdict = reason
	}
	r.decisions = append(r.decisions, verdict)
}

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMiddlewarePendingAnswers503(t *testing.T) {
	src := staticSource{sess: clinicauth.Session{Hydrating: true}}
	h := Middleware(src, nil, Requirement{}, Policy{}, http.NotFoundHandler())

	rr := serve(t, h, "/admin/dashboard")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("no Retry-After on pending response")
	}
}

func TestMiddlewareUnauthenticatedRedirectRemembersPath(t *testing.T) {
	src := staticSource{}
	rec := &recorderSpy{}
	h := Middleware(src, rec, Requirement{}, Policy{}, http.NotFoundHandler())

	rr := serve(t, h, "/admin/reports/7")
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != clinicauth.PathLogin {
		t.Fatalf("Location = %q", loc)
	}
	if rec.remembered != "/admin/reports/7" {
		t.Fatalf("remembered path = %q", rec.remembered)
	}
	if len(rec.decisions) != 1 || rec.decisions[0] != ReasonUnauthenticated {
		t.Fatalf("decisions = %v", rec.decisions)
	}
}

func TestMiddlewareAllowAttachesSession(t *testing.T) {
	src := staticSource{sess: clinicauth.Session{
		Token:         "tok",
		Authenticated: true,
		User: &identity.User{
			ID: "u1", Role: identity.RoleAdmin, EmailVerified: true, ClinicID: "c1",
		},
	}}
	rec := &recorderSpy{}

	var got clinicauth.Session
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = SessionFromContext(r.Context())
	})
	h := Middleware(src, rec, Requirement{Roles: []identity.Role{identity.RoleAdmin}}, Policy{}, next)

	rr := serve(t, h, "/admin/dashboard")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !ok || got.User == nil || got.User.ID != "u1" {
		t.Fatalf("context session = (%+v, %v)", got, ok)
	}
	if len(rec.decisions) != 1 || rec.decisions[0] != "allow" {
		t.Fatalf("decisions = %v", rec.decisions)
	}
}

func TestMiddlewareRedirectCarriesContext(t *testing.T) {
	src := staticSource{sess: clinicauth.Session{
		Token:         "tok",
		Authenticated: true,
		User: &identity.User{
			ID: "u1", Role: identity.RolePatient, EmailVerified: true,
		},
	}}
	req := Requirement{Roles: []identity.Role{identity.RoleAdmin, identity.RoleDoctor}}
	h := Middleware(src, nil, req, Policy{}, http.NotFoundHandler())

	rr := serve(t, h, "/admin/dashboard")
	loc := rr.Header().Get("Location")
	if !strings.HasPrefix(loc, clinicauth.PathUnauthorized+"?") {
		t.Fatalf("Location = %q", loc)
	}
	if !strings.Contains(loc, "role=Patient") {
		t.Fatalf("Location missing user role: %q", loc)
	}
	if !strings.Contains(loc, "required=Admin%2CDoctor") {
		t.Fatalf("Location missing required roles: %q", loc)
	}
}
