// Package identity holds the portal's user-facing identity model: roles,
// the user profile record, and the clinic record a user may belong to.
// These types are shared by the gateway, the session cache, and the
// session manager; none of them carry any credential material.
package identity

import "strings"

// Role is the portal role an account is registered under. The backend
// treats the role as part of the credential: logging in with the wrong
// role selected is rejected even when the password is correct.
type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleDoctor       Role = "Doctor"
	RoleReceptionist Role = "Receptionist"
	RolePatient      Role = "Patient"
)

// Roles lists every role the portal knows about.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient}

// ParseRole maps a free-form role string (any casing) onto a known Role.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the portal's known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// User is the profile record as the session layer sees it. It is replaced
// wholesale on every successful profile fetch and cleared on logout;
// partial mutation happens only through the session manager.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	EmailVerified bool   `json:"isEmailVerified"`
	ClinicID      string `json:"clinicId,omitempty"`
}

// ClinicActive is the clinic status value the backend uses for clinics
// that are operational.
const ClinicActive = "active"

// Clinic is the dependent clinic lookup resolved from User.ClinicID.
type Clinic struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Contact string `json:"contact,omitempty"`
}

// Active reports whether the clinic's status marks it operational.
func (c *Clinic) Active() bool {
	return c != nil && c.Status == ClinicActive
}
