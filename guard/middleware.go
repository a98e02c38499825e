package guard

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/Manishmatre/clinicauth"
)

// SessionSource yields the current session snapshot. *clinicauth.Manager
// satisfies it.
type SessionSource interface {
	Session() clinicauth.Session
}

// Recorder receives the side effects of guard decisions: path capture on
// unauthenticated redirects and decision accounting. *clinicauth.Manager
// satisfies it.
type Recorder interface {
	RememberPath(ctx context.Context, path string) error
	GuardDecision(ctx context.Context, path string, allowed bool, reason string)
}

type ctxKey struct{}

// SessionFromContext returns the session snapshot the middleware
// attached for an allowed request.
func SessionFromContext(ctx context.Context) (clinicauth.Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(clinicauth.Session)
	return sess, ok
}

// Middleware enforces req on every request before next sees it. While
// the session hydrates it answers 503 with Retry-After rather than
// redirecting on provisional state. Redirect destinations carry the
// decision's context as query parameters so the target page can render
// it. rec may be nil when no side effects are wanted.
func Middleware(src SessionSource, rec Recorder, req Requirement, pol Policy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dec := Evaluate(src.Session(), r.URL.Path, req, pol)
		switch dec.Outcome {
		case OutcomePending:
			w.Header().Set("Retry-After", "1")
			http.Error(w, "session initializing", http.StatusServiceUnavailable)
		case OutcomeAllow:
			if rec != nil {
				rec.GuardDecision(r.Context(), r.URL.Path, true, "")
			}
			ctx := context.WithValue(r.Context(), ctxKey{}, src.Session())
			next.ServeHTTP(w, r.WithContext(ctx))
		default:
			if rec != nil {
				if dec.Reason == ReasonUnauthenticated {
					// Remember where the session was headed so login
					// can return there. Best-effort.
					_ = rec.RememberPath(r.Context(), dec.AttemptedPath)
				}
				rec.GuardDecision(r.Context(), r.URL.Path, false, dec.Reason)
			}
			http.Redirect(w, r, redirectURL(dec), http.StatusFound)
		}
	})
}

func redirectURL(dec Decision) string {
	q := url.Values{}
	switch dec.Reason {
	case ReasonUnverifiedEmail:
		if dec.Email != "" {
			q.Set("email", dec.Email)
		}
	case ReasonRoleDenied:
		q.Set("role", string(dec.UserRole))
		q.Set("required", joinRoles(dec.RequiredRoles))
	}
	if len(q) == 0 {
		return dec.Redirect
	}
	return dec.Redirect + "?" + q.Encode()
}

func joinRoles(roles []clinicauth.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
