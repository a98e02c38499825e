package clinicauth

import (
	"errors"

	"github.com/Manishmatre/clinicauth/gateway"
)

// ErrManagerClosed is returned by operations invoked after Close.
var ErrManagerClosed = errors.New("session manager closed")

// kindFromError folds a gateway error into the ErrorKind taxonomy. Order
// matters only for readability; the gateway never wraps two sentinels
// into one error.
func kindFromError(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, gateway.ErrRoleMismatch):
		return KindRoleMismatch
	case errors.Is(err, gateway.ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, gateway.ErrUnverifiedEmail):
		return KindUnverifiedEmail
	case errors.Is(err, gateway.ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, gateway.ErrNotFound):
		return KindProfileNotFound
	case errors.Is(err, gateway.ErrUnauthorized):
		return KindTokenExpired
	case gateway.ErrRegistrationRejected(err):
		return KindRejected
	default:
		// Transport failures and unclassified server errors.
		return KindNetworkUnavailable
	}
}

// userMessage renders a failure for direct display. Kinds with fixed
// phrasing get it here; KindRejected carries the server's own message.
func userMessage(kind ErrorKind, err error) string {
	switch kind {
	case KindInvalidCredentials:
		return "invalid email or password"
	case KindRoleMismatch:
		return "this account is registered under a different role"
	case KindUnverifiedEmail:
		return "please verify your email address before signing in"
	case KindMalformedResponse:
		return "the server returned an unexpected response"
	case KindNetworkUnavailable:
		return "could not reach the server, please try again"
	case KindStorageFailure:
		return "could not save your session on this device"
	case KindSuperseded:
		return "sign-in was superseded by a newer request"
	default:
		if err != nil {
			return err.Error()
		}
		return kind.String()
	}
}
