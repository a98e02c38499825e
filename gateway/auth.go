package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Manishmatre/clinicauth/identity"
)

// Credentials is the login input. Role is part of the credential: the
// backend rejects a correct password presented under the wrong role.
type Credentials struct {
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Role     identity.Role `json:"role"`
}

// Registration is the input shared by the three register endpoints.
// ClinicName is consumed only by the admin endpoint, which creates the
// clinic alongside the account.
type Registration struct {
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Password   string        `json:"password"`
	Role       identity.Role `json:"role,omitempty"`
	ClinicID   string        `json:"clinicId,omitempty"`
	ClinicName string        `json:"clinicName,omitempty"`
}

// AuthResponse is the normalized result of login and registration. Token
// is guaranteed non-empty on login; registration may omit it when the
// backend requires email verification before the first sign-in.
type AuthResponse struct {
	Token   string
	User    *identity.User
	Clinic  *identity.Clinic
	Message string
}

// Login calls POST /auth/login. Expected rejections come back as
// ErrInvalidCredentials, ErrRoleMismatch, or ErrUnverifiedEmail; a 2xx
// without a token is ErrMalformedResponse.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	env, status, err := c.do(ctx, http.MethodPost, "/auth/login", "", creds)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized:
		if roleMismatchMessage(env.message()) {
			return nil, fmt.Errorf("%w: %s", ErrRoleMismatch, env.message())
		}
		return nil, ErrInvalidCredentials
	case status == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnverifiedEmail, env.message())
	case status >= 400:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, env.message())
	}

	resp, err := authResponse(env)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		// The HTTP call "succeeded" but the contract did not.
		return nil, ErrMalformedResponse
	}
	return resp, nil
}

// RegisterAdmin calls POST /auth/register-admin.
func (c *Client) RegisterAdmin(ctx context.Context, reg Registration) (*AuthResponse, error) {
	return c.register(ctx, "/auth/register-admin", reg)
}

// RegisterStaff calls POST /auth/register-staff.
func (c *Client) RegisterStaff(ctx context.Context, reg Registration) (*AuthResponse, error) {
	return c.register(ctx, "/auth/register-staff", reg)
}

// RegisterPatient calls POST /auth/register-patient.
func (c *Client) RegisterPatient(ctx context.Context, reg Registration) (*AuthResponse, error) {
	return c.register(ctx, "/auth/register-patient", reg)
}

func (c *Client) register(ctx context.Context, path string, reg Registration) (*AuthResponse, error) {
	env, status, err := c.do(ctx, http.MethodPost, path, "", reg)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: %s", errRegistrationRejected, env.message())
	}
	return authResponse(env)
}

// errRegistrationRejected carries the server's own message; registration
// rejections (duplicate email, weak password) are too varied for a fixed
// taxonomy and are surfaced verbatim.
var errRegistrationRejected = errors.New("registration rejected")

// ErrRegistrationRejected reports whether err is a registration rejection
// whose message should be shown to the user as-is.
func ErrRegistrationRejected(err error) bool {
	return errors.Is(err, errRegistrationRejected)
}

// ResendVerification calls POST /auth/resend-verification.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.fireAndForget(ctx, "/auth/resend-verification", map[string]string{"email": email})
}

// RequestPasswordReset calls POST /auth/reset-password-request.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.fireAndForget(ctx, "/auth/reset-password-request", map[string]string{"email": email})
}

// ConfirmPasswordReset calls POST /auth/reset-password with the emailed
// reset token and the new password.
func (c *Client) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	return c.fireAndForget(ctx, "/auth/reset-password", map[string]string{
		"token":       resetToken,
		"newPassword": newPassword,
	})
}

func (c *Client) fireAndForget(ctx context.Context, path string, body any) error {
	env, status, err := c.do(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, env.message())
	}
	return nil
}

func authResponse(env *envelope) (*AuthResponse, error) {
	user, err := env.user()
	if err != nil {
		return nil, err
	}
	clinic, err := env.clinic()
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Token:   env.token(),
		User:    user,
		Clinic:  clinic,
		Message: env.message(),
	}, nil
}
