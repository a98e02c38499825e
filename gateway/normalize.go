package gateway

import (
	"encoding/json"
	"strings"

	"github.com/Manishmatre/clinicauth/identity"
)

// envelope is the superset of every response shape the backend emits.
// Three shapes occur in the wild: payload nested under named keys inside
// "data" ({data:{user,clinic,token}}), "data" being the object itself
// ({data:{...clinic fields...}}), and bare top-level keys ({user:...}).
// All are accepted here so ambiguity never leaks past this package.
type envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Token   string          `json:"token,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
	Clinic  json.RawMessage `json:"clinic,omitempty"`
}

// payload is the named-key inner shape of "data".
type payload struct {
	Token  string          `json:"token,omitempty"`
	User   json.RawMessage `json:"user,omitempty"`
	Clinic json.RawMessage `json:"clinic,omitempty"`
}

// wireUser tolerates the two id spellings the backend has used.
type wireUser struct {
	ID            string `json:"id"`
	MongoID       string `json:"_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"isEmailVerified"`
	ClinicID      string `json:"clinicId"`
}

type wireClinic struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Contact string `json:"contact"`
}

func (e *envelope) payload() *payload {
	if e == nil || len(e.Data) == 0 {
		return nil
	}
	p := &payload{}
	if err := json.Unmarshal(e.Data, p); err != nil {
		return nil
	}
	return p
}

func (e *envelope) message() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (e *envelope) token() string {
	if e == nil {
		return ""
	}
	if p := e.payload(); p != nil && p.Token != "" {
		return p.Token
	}
	return e.Token
}

// user resolves the user payload: data.user first, then the bare
// top-level user, then data as the user object itself. A candidate that
// exists but fails validation is a malformed response; total absence
// returns (nil, nil) and the endpoint decides whether that is an error.
func (e *envelope) user() (*identity.User, error) {
	if p := e.payload(); p != nil && len(p.User) > 0 {
		return decodeUser(p.User)
	}
	if len(e.User) > 0 {
		return decodeUser(e.User)
	}
	if len(e.Data) > 0 {
		if user, err := decodeUser(e.Data); err == nil {
			return user, nil
		}
	}
	return nil, nil
}

func (e *envelope) clinic() (*identity.Clinic, error) {
	if p := e.payload(); p != nil && len(p.Clinic) > 0 {
		return decodeClinic(p.Clinic)
	}
	if len(e.Clinic) > 0 {
		return decodeClinic(e.Clinic)
	}
	if len(e.Data) > 0 {
		if clinic, err := decodeClinic(e.Data); err == nil {
			return clinic, nil
		}
	}
	return nil, nil
}

func decodeUser(raw json.RawMessage) (*identity.User, error) {
	w := wireUser{}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformedResponse
	}
	id := w.ID
	if id == "" {
		id = w.MongoID
	}
	role, ok := identity.ParseRole(w.Role)
	if id == "" || !ok {
		return nil, ErrMalformedResponse
	}
	return &identity.User{
		ID:            id,
		Name:          w.Name,
		Email:         w.Email,
		Role:          role,
		EmailVerified: w.EmailVerified,
		ClinicID:      w.ClinicID,
	}, nil
}

func decodeClinic(raw json.RawMessage) (*identity.Clinic, error) {
	w := wireClinic{}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformedResponse
	}
	id := w.ID
	if id == "" {
		id = w.MongoID
	}
	if id == "" {
		return nil, ErrMalformedResponse
	}
	return &identity.Clinic{
		ID:      id,
		Name:    w.Name,
		Status:  w.Status,
		Contact: w.Contact,
	}, nil
}

// roleMismatchMessage reports whether a 401 body signals that the
// account exists under a different role, which the UI surfaces as a
// distinct failure so the user can fix the role selector.
func roleMismatchMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "role")
}
