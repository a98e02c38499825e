package guard

import (
	"testing"

	"github.com/Manishmatre/clinicauth"
	"github.com/Manishmatre/clinicauth/identity"
)

func doctorSession() clinicauth.Session {
	return clinicauth.Session{
		Token:         "tok",
		Authenticated: true,
		User: &identity.User{
			ID: "u1", Name: "Dana Doctor", Email: "dana@example.com",
			Role: identity.RoleDoctor, EmailVerified: true, ClinicID: "c1",
		},
		Clinic: &identity.Clinic{ID: "c1", Name: "Sunrise Clinic", Status: identity.ClinicActive},
	}
}

func TestEvaluate(t *testing.T) {
	staffReq := Requirement{
		Roles:           []identity.Role{identity.RoleDoctor, identity.RoleReceptionist},
		RequireVerified: true,
		RequireClinic:   true,
	}

	tests := []struct {
		name     string
		sess     func() clinicauth.Session
		req      Requirement
		pol      Policy
		want     Outcome
		redirect string
		reason   string
	}{
		{
			name: "hydrating holds",
			sess: func() clinicauth.Session { return clinicauth.Session{Hydrating: true} },
			req:  staffReq,
			want: OutcomePending,
		},
		{
			name: "authenticated without user holds",
			sess: func() clinicauth.Session {
				return clinicauth.Session{Token: "tok", Authenticated: true}
			},
			req:  staffReq,
			want: OutcomePending,
		},
		{
			name:     "unauthenticated to login",
			sess:     func() clinicauth.Session { return clinicauth.Session{} },
			req:      staffReq,
			want:     OutcomeRedirect,
			redirect: clinicauth.PathLogin,
			reason:   ReasonUnauthenticated,
		},
		{
			name: "unverified email",
			sess: func() clinicauth.Session {
				s := doctorSession()
				s.User.EmailVerified = false
				return s
			},
			req:      staffReq,
			want:     OutcomeRedirect,
			redirect: clinicauth.PathVerifyEmail,
			reason:   ReasonUnverifiedEmail,
		},
		{
			name: "no clinic",
			sess: func() clinicauth.Session {
				s := doctorSession()
				s.User.ClinicID = ""
				s.Clinic = nil
				return s
			},
			req:      staffReq,
			want:     OutcomeRedirect,
			redirect: clinicauth.PathNoClinic,
			reason:   ReasonNoClinic,
		},
		{
			name: "inactive clinic ignored by default",
			sess: func() clinicauth.Session {
				s := doctorSession()
				s.Clinic.Status = "suspended"
				return s
			},
			req:  staffReq,
			want: OutcomeAllow,
		},
		{
			name: "inactive clinic enforced",
			sess: func() clinicauth.Session {
				s := doctorSession()
				s.Clinic.Status = "suspended"
				return s
			},
			req:      staffReq,
			pol:      Policy{EnforceClinicActive: true},
			want:     OutcomeRedirect,
			redirect: clinicauth.PathClinicInactive,
			reason:   ReasonClinicInactive,
		},
		{
			name: "role denied",
			sess: doctorSession,
			req: Requirement{
				Roles:           []identity.Role{identity.RoleAdmin},
				RequireVerified: true,
				RequireClinic:   true,
			},
			want:     OutcomeRedirect,
			redirect: clinicauth.PathUnauthorized,
			reason:   ReasonRoleDenied,
		},
		{
			name: "role allowed",
			sess: doctorSession,
			req:  staffReq,
			want: OutcomeAllow,
		},
		{
			name: "empty role list admits any authenticated role",
			sess: doctorSession,
			req:  Requirement{RequireVerified: true},
			want: OutcomeAllow,
		},
		{
			name: "unauthenticated beats role",
			sess: func() clinicauth.Session { return clinicauth.Session{} },
			req: Requirement{
				Roles: []identity.Role{identity.RoleAdmin},
			},
			want:     OutcomeRedirect,
			redirect: clinicauth.PathLogin,
			reason:   ReasonUnauthenticated,
		},
		{
			name: "unverified beats role",
			sess: func() clinicauth.Session {
				s := doctorSession()
				s.User.EmailVerified = false
				return s
			},
			req: Requirement{
				Roles:           []identity.Role{identity.RoleAdmin},
				RequireVerified: true,
			},
			want:     OutcomeRedirect,
			redirect: clinicauth.PathVerifyEmail,
			reason:   ReasonUnverifiedEmail,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := Evaluate(tt.sess(), "/doctor/home", tt.req, tt.pol)
			if dec.Outcome != tt.want {
				t.Fatalf("outcome = %s, want %s", dec.Outcome, tt.want)
			}
			if dec.Redirect != tt.redirect {
				t.Fatalf("redirect = %q, want %q", dec.Redirect, tt.redirect)
			}
			if dec.Reason != tt.reason {
				t.Fatalf("reason = %q, want %q", dec.Reason, tt.reason)
			}
			if dec.AttemptedPath != "/doctor/home" {
				t.Fatalf("attempted path = %q", dec.AttemptedPath)
			}
		})
	}
}

func TestEvaluateDecorations(t *testing.T) {
	sess := doctorSession()
	sess.User.EmailVerified = false
	dec := Evaluate(sess, "/doctor/home", Requirement{RequireVerified: true}, Policy{})
	if dec.Email != "dana@example.com" {
		t.Fatalf("email = %q", dec.Email)
	}

	dec = Evaluate(doctorSession(), "/admin/dashboard", Requirement{Roles: []identity.Role{identity.RoleAdmin}}, Policy{})
	if dec.UserRole != identity.RoleDoctor {
		t.Fatalf("user role = %q", dec.UserRole)
	}
	if len(dec.RequiredRoles) != 1 || dec.RequiredRoles[0] != identity.RoleAdmin {
		t.Fatalf("required roles = %v", dec.RequiredRoles)
	}
}
