package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Manishmatre/clinicauth/identity"
)

// Profile calls GET /auth/profile. A 404 comes back as ErrNotFound so the
// caller can retry the legacy endpoint once; a 401 is ErrUnauthorized and
// means the token itself is no longer accepted.
func (c *Client) Profile(ctx context.Context, bearer string) (*identity.User, error) {
	return c.profile(ctx, "/auth/profile", bearer)
}

// ProfileLegacy calls GET /users/profile, the pre-rename profile route
// still served by older backend deployments. Used only after Profile
// fails.
func (c *Client) ProfileLegacy(ctx context.Context, bearer string) (*identity.User, error) {
	return c.profile(ctx, "/users/profile", bearer)
}

func (c *Client) profile(ctx context.Context, path, bearer string) (*identity.User, error) {
	env, status, err := c.do(ctx, http.MethodGet, path, bearer, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status >= 400:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, env.message())
	}

	user, err := env.user()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrMalformedResponse
	}
	return user, nil
}

// Clinic calls GET /clinics/:id. Failure here is non-fatal to hydration;
// the caller falls back to the cached clinic.
func (c *Client) Clinic(ctx context.Context, bearer, id string) (*identity.Clinic, error) {
	env, status, err := c.do(ctx, http.MethodGet, "/clinics/"+url.PathEscape(id), bearer, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status >= 400:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, env.message())
	}

	clinic, err := env.clinic()
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, ErrMalformedResponse
	}
	return clinic, nil
}
