package clinicauth

import "testing"

func TestHomePath(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleAdmin, PathAdminHome},
		{RoleDoctor, PathDoctorHome},
		{RoleReceptionist, PathReceptionistHome},
		{RolePatient, PathPatientHome},
		{Role("Janitor"), PathLogin},
		{Role(""), PathLogin},
	}
	for _, tt := range tests {
		if got := HomePath(tt.role); got != tt.want {
			t.Fatalf("HomePath(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}
