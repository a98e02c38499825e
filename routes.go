package clinicauth

// Route paths shared between the session manager (post-login
// destinations) and the route guard (redirect targets). The role homes
// are the landing screens each role is sent to after login when no
// captured redirect path exists.
const (
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathForgotPassword = "/forgot-password"
	PathResetPassword  = "/reset-password"
	PathVerifyEmail    = "/verify-email"
	PathUnauthorized   = "/unauthorized"
	PathNoClinic       = "/no-clinic"
	PathClinicInactive = "/clinic-inactive"

	PathAdminHome        = "/admin/dashboard"
	PathDoctorHome       = "/doctor/dashboard"
	PathReceptionistHome = "/receptionist/dashboard"
	PathPatientHome      = "/patient/dashboard"
)

// HomePath maps a role to its post-login landing path. Unknown roles
// fall back to the login screen rather than guessing a privileged home.
func HomePath(role Role) string {
	switch role {
	case RoleAdmin:
		return PathAdminHome
	case RoleDoctor:
		return PathDoctorHome
	case RoleReceptionist:
		return PathReceptionistHome
	case RolePatient:
		return PathPatientHome
	default:
		return PathLogin
	}
}
