package clinicauth

import (
	"context"

	"github.com/Manishmatre/clinicauth/gateway"
)

// RegisterAdmin creates a clinic owner account. When the backend returns
// a token immediately the session is established as if by Login;
// otherwise the caller is directed to email verification.
func (m *Manager) RegisterAdmin(ctx context.Context, reg Registration) LoginResult {
	return m.register(ctx, reg, m.gw.RegisterAdmin)
}

// RegisterStaff creates a doctor or receptionist account under an
// existing clinic.
func (m *Manager) RegisterStaff(ctx context.Context, reg Registration) LoginResult {
	return m.register(ctx, reg, m.gw.RegisterStaff)
}

// RegisterPatient creates a patient account.
func (m *Manager) RegisterPatient(ctx context.Context, reg Registration) LoginResult {
	return m.register(ctx, reg, m.gw.RegisterPatient)
}

func (m *Manager) register(ctx context.Context, reg Registration, call func(context.Context, gateway.Registration) (*gateway.AuthResponse, error)) LoginResult {
	gen, err := m.begin()
	if err != nil {
		return LoginResult{Kind: KindSuperseded, Message: err.Error()}
	}

	resp, err := call(ctx, reg)
	if err != nil {
		kind := kindFromError(err)
		m.metricInc(MetricRegisterFailure)
		m.emitEvent(ctx, EventRegisterFailure, false, nil, kind, err, func() map[string]string {
			return map[string]string{"email": reg.Email, "role": string(reg.Role)}
		})
		return LoginResult{Kind: kind, Message: userMessage(kind, err)}
	}

	if resp.Token == "" {
		// Account created but not yet usable; the backend wants the
		// email verified before issuing a token.
		m.metricInc(MetricRegisterSuccess)
		m.emitEvent(ctx, EventRegisterSuccess, true, resp.User, KindNone, nil, func() map[string]string {
			return map[string]string{"pending_verification": "true"}
		})
		return LoginResult{
			Success:    true,
			User:       cloneUser(resp.User),
			RedirectTo: PathVerifyEmail,
			Message:    resp.Message,
		}
	}

	res := m.completeAuth(ctx, gen, resp, reg.Email)
	if res.Success {
		m.metricInc(MetricRegisterSuccess)
		m.emitEvent(ctx, EventRegisterSuccess, true, res.User, KindNone, nil, nil)
	} else {
		m.metricInc(MetricRegisterFailure)
		m.emitEvent(ctx, EventRegisterFailure, false, nil, res.Kind, nil, nil)
	}
	return res
}
