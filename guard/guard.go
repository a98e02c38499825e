// Package guard evaluates whether a session may enter a route and, when
// it may not, where to send it instead. Decisions are pure: Evaluate
// inspects a session snapshot and returns a verdict without touching the
// session or the network, so the same inputs always yield the same
// decision.
package guard

import (
	"github.com/Manishmatre/clinicauth"
	"github.com/Manishmatre/clinicauth/identity"
)

// Requirement describes what a route demands of a session.
type Requirement struct {
	// Roles lists the roles admitted to the route. Empty means any
	// authenticated role.
	Roles []identity.Role

	// RequireVerified demands a verified email address.
	RequireVerified bool

	// RequireClinic demands a clinic association.
	RequireClinic bool
}

// Outcome classifies a guard decision.
type Outcome uint8

const (
	// OutcomePending means the session is still hydrating; the caller
	// should hold the request rather than act on provisional state.
	OutcomePending Outcome = iota

	// OutcomeAllow admits the request.
	OutcomeAllow

	// OutcomeRedirect denies the request and names the destination.
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeAllow:
		return "allow"
	default:
		return "redirect"
	}
}

// Denial reasons carried on redirect decisions.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonUnverifiedEmail = "unverified_email"
	ReasonNoClinic        = "no_clinic"
	ReasonClinicInactive  = "clinic_inactive"
	ReasonRoleDenied      = "role_denied"
)

// Decision is the verdict for one request.
type Decision struct {
	Outcome  Outcome
	Redirect string
	Reason   string

	// AttemptedPath is the path the session tried to reach; on an
	// unauthenticated redirect it should be remembered so the login
	// flow can return there.
	AttemptedPath string

	// Email is set on unverified-email redirects so the verification
	// page can prefill and offer a resend.
	Email string

	// UserRole and RequiredRoles are set on role denials for display on
	// the unauthorized page.
	UserRole      identity.Role
	RequiredRoles []identity.Role
}

// Policy carries deployment-wide toggles that apply to every route.
type Policy struct {
	// EnforceClinicActive redirects sessions whose clinic exists but is
	// not active. Off by default: a suspended clinic is a billing
	// state, not an authentication state.
	EnforceClinicActive bool
}

// Evaluate decides whether sess may enter path under req. Checks run in
// a fixed order so the most fundamental problem wins: hydration state,
// then authentication, then email verification, then clinic presence
// and standing, then role.
func Evaluate(sess clinicauth.Session, path string, req Requirement, pol Policy) Decision {
	if sess.Hydrating {
		return Decision{Outcome: OutcomePending, AttemptedPath: path}
	}
	if sess.Authenticated && sess.User == nil {
		// Authenticated without a resolved user is a transient shape
		// mid-hydration; never route on it.
		return Decision{Outcome: OutcomePending, AttemptedPath: path}
	}
	if !sess.Authenticated {
		return Decision{
			Outcome:       OutcomeRedirect,
			Redirect:      clinicauth.PathLogin,
			Reason:        ReasonUnauthenticated,
			AttemptedPath: path,
		}
	}

	user := sess.User
	if req.RequireVerified && !user.EmailVerified {
		return Decision{
			Outcome:       OutcomeRedirect,
			Redirect:      clinicauth.PathVerifyEmail,
			Reason:        ReasonUnverifiedEmail,
			AttemptedPath: path,
			Email:         user.Email,
		}
	}

	if req.RequireClinic {
		if user.ClinicID == "" {
			return Decision{
				Outcome:       OutcomeRedirect,
				Redirect:      clinicauth.PathNoClinic,
				Reason:        ReasonNoClinic,
				AttemptedPath: path,
			}
		}
		if pol.EnforceClinicActive && sess.Clinic != nil && !sess.Clinic.Active() {
			return Decision{
				Outcome:       OutcomeRedirect,
				Redirect:      clinicauth.PathClinicInactive,
				Reason:        ReasonClinicInactive,
				AttemptedPath: path,
			}
		}
	}

	if len(req.Roles) > 0 && !roleAllowed(user.Role, req.Roles) {
		return Decision{
			Outcome:       OutcomeRedirect,
			Redirect:      clinicauth.PathUnauthorized,
			Reason:        ReasonRoleDenied,
			AttemptedPath: path,
			UserRole:      user.Role,
			RequiredRoles: req.Roles,
		}
	}

	return Decision{Outcome: OutcomeAllow, AttemptedPath: path}
}

func roleAllowed(role identity.Role, allowed []identity.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
