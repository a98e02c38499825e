package clinicauth

import (
	"github.com/Manishmatre/clinicauth/gateway"
	"github.com/Manishmatre/clinicauth/identity"
)

// Aliases so most consumers only import this package.

// Role is re-exported from the identity package.
type Role = identity.Role

const (
	RoleAdmin        = identity.RoleAdmin
	RoleDoctor       = identity.RoleDoctor
	RoleReceptionist = identity.RoleReceptionist
	RolePatient      = identity.RolePatient
)

// User is re-exported from the identity package.
type User = identity.User

// Clinic is re-exported from the identity package.
type Clinic = identity.Clinic

// Credentials is the login input, re-exported from the gateway package.
type Credentials = gateway.Credentials

// Registration is the registration input, re-exported from the gateway
// package.
type Registration = gateway.Registration

// Session is the aggregate "who is using the application right now".
//
// Invariants: Authenticated implies Token was valid-unexpired at last
// check. Authenticated with a nil User exists only transiently during
// hydration, while Hydrating is still true; route decisions treat that
// state as pending, never as authorized. Degraded marks user/clinic data
// that came from the local cache rather than a fresh server response.
type Session struct {
	Token         string
	User          *User
	Clinic        *Clinic
	Authenticated bool
	Degraded      bool
	Hydrating     bool
}

// clone deep-copies the session so snapshots handed to callers never
// alias manager-owned state.
func (s Session) clone() Session {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Clinic != nil {
		c := *s.Clinic
		out.Clinic = &c
	}
	return out
}

// ErrorKind classifies every failure the session layer can surface.
// Expected authentication failures are values here, not Go errors: the
// caller is a UI waiting for a yes/no answer and switches on the kind.
type ErrorKind uint8

const (
	// KindNone means no failure.
	KindNone ErrorKind = iota
	// KindNoToken: no credential present. Not an error, just signed out.
	KindNoToken
	// KindTokenExpired: the credential is past its expiry (detected
	// locally) or definitively rejected by the server. Always forces
	// logout.
	KindTokenExpired
	// KindNetworkUnavailable: the backend could not be reached.
	// Hydration recovers via the cache; refresh surfaces it as a soft
	// warning.
	KindNetworkUnavailable
	// KindProfileNotFound: both profile endpoints 404ed.
	KindProfileNotFound
	// KindInvalidCredentials: login rejected, wrong email or password.
	KindInvalidCredentials
	// KindRoleMismatch: login rejected because the account is registered
	// under a different role than the one selected.
	KindRoleMismatch
	// KindUnverifiedEmail: login rejected until the email is verified.
	KindUnverifiedEmail
	// KindMalformedResponse: the server reported success but omitted a
	// required payload. Never treated as a degraded success.
	KindMalformedResponse
	// KindRejected: the server rejected the request with its own
	// message (registration validation, reset-token problems).
	KindRejected
	// KindStorageFailure: the local persistence layer failed while
	// committing a session; no partial state is left behind.
	KindStorageFailure
	// KindSuperseded: the operation completed but a logout or a newer
	// attempt had already won; its result was discarded.
	KindSuperseded
)

var kindNames = map[ErrorKind]string{
	KindNone:               "none",
	KindNoToken:            "no_token",
	KindTokenExpired:       "token_expired",
	KindNetworkUnavailable: "network_unavailable",
	KindProfileNotFound:    "profile_not_found",
	KindInvalidCredentials: "invalid_credentials",
	KindRoleMismatch:       "role_mismatch",
	KindUnverifiedEmail:    "unverified_email",
	KindMalformedResponse:  "malformed_response",
	KindRejected:           "rejected",
	KindStorageFailure:     "storage_failure",
	KindSuperseded:         "superseded",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// LoginResult is returned by Login and the Register methods. It is a
// value, never a panic or error: Success false carries the kind and a
// user-presentable message.
type LoginResult struct {
	Success    bool
	User       *User
	RedirectTo string
	Kind       ErrorKind
	Message    string
}

// HydrationOutcome is the terminal state of one hydration attempt.
type HydrationOutcome uint8

const (
	// HydrationSignedOut: no usable credential; session is reset.
	HydrationSignedOut HydrationOutcome = iota
	// HydrationFresh: profile (and clinic, when applicable) came from
	// the server.
	HydrationFresh
	// HydrationDegraded: the session is authenticated but user/clinic
	// data came from the local cache.
	HydrationDegraded
)

func (o HydrationOutcome) String() string {
	switch o {
	case HydrationFresh:
		return "fresh"
	case HydrationDegraded:
		return "degraded"
	default:
		return "signed_out"
	}
}

// HydrationResult is returned by Hydrate. Kind explains a signed-out or
// degraded outcome; it is KindNone on a fully fresh hydration.
type HydrationResult struct {
	Outcome HydrationOutcome
	Kind    ErrorKind
	Session Session
}

// RefreshOutcome is the terminal state of one refresh attempt.
type RefreshOutcome uint8

const (
	// RefreshSignedOut: the token was expired or rejected; the session
	// was torn down.
	RefreshSignedOut RefreshOutcome = iota
	// RefreshFresh: profile and clinic were replaced from the server.
	RefreshFresh
	// RefreshDegraded: the backend was unreachable; the current session
	// is kept and marked degraded.
	RefreshDegraded
)

func (o RefreshOutcome) String() string {
	switch o {
	case RefreshFresh:
		return "fresh"
	case RefreshDegraded:
		return "degraded"
	default:
		return "signed_out"
	}
}

// RefreshResult is returned by Refresh.
type RefreshResult struct {
	Outcome RefreshOutcome
	Kind    ErrorKind
	Session Session
}

// FlowResult is returned by the stateless account flows (password reset
// request/confirm, resend verification).
type FlowResult struct {
	Success bool
	Kind    ErrorKind
	Message string
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	out := *u
	return &out
}

func cloneClinic(c *Clinic) *Clinic {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
