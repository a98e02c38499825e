// Package cache is the persistent session cache: the last-known user and
// clinic records, kept independently of the token and used only as a
// read fallback when the backend cannot be reached during hydration. It
// also carries the small pieces of convenience client state (last login
// email, preferred role, the one-shot redirect-after-login path).
//
// Nothing in this package makes authorization decisions; a cached role
// is display fallback only and is always superseded by the freshest
// server-provided profile.
package cache

import (
	"context"
	"time"

	"github.com/Manishmatre/clinicauth/identity"
)

// Record is the last user and clinic written by the session manager on a
// successful login or profile refresh.
type Record struct {
	User    *identity.User   `json:"user"`
	Clinic  *identity.Clinic `json:"clinic,omitempty"`
	SavedAt time.Time        `json:"savedAt"`
}

// Store persists the session cache across restarts.
//
// LoadRecord returns (nil, nil) when no record is present. TakeRedirectPath
// consumes the stored path: a second call returns empty until SetRedirectPath
// writes a new one. All operations are safe for concurrent use.
type Store interface {
	LoadRecord(ctx context.Context) (*Record, error)
	SaveRecord(ctx context.Context, rec *Record) error
	ClearRecord(ctx context.Context) error

	LastEmail(ctx context.Context) (string, error)
	SetLastEmail(ctx context.Context, email string) error

	PreferredRole(ctx context.Context) (identity.Role, error)
	SetPreferredRole(ctx context.Context, role identity.Role) error

	SetRedirectPath(ctx context.Context, path string) error
	TakeRedirectPath(ctx context.Context) (string, error)
}
