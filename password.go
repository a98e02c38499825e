package clinicauth

import "context"

// RequestPasswordReset asks the backend to mail a reset link. The result
// is always safe to show: the backend does not reveal whether the email
// exists, and neither does this method.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) FlowResult {
	return m.flow(ctx, EventPasswordResetRequest, MetricPasswordResetRequest, func() error {
		return m.gw.RequestPasswordReset(ctx, email)
	})
}

// ConfirmPasswordReset submits a reset token and the new password. The
// session is not established; the caller signs in again afterwards.
func (m *Manager) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) FlowResult {
	return m.flow(ctx, EventPasswordResetConfirm, MetricPasswordResetConfirm, func() error {
		return m.gw.ConfirmPasswordReset(ctx, resetToken, newPassword)
	})
}

// ResendVerification asks the backend to send a fresh verification mail.
func (m *Manager) ResendVerification(ctx context.Context, email string) FlowResult {
	return m.flow(ctx, EventVerificationResend, MetricVerificationResend, func() error {
		return m.gw.ResendVerification(ctx, email)
	})
}

func (m *Manager) flow(ctx context.Context, typ EventType, id MetricID, call func() error) FlowResult {
	if _, err := m.begin(); err != nil {
		return FlowResult{Kind: KindSuperseded, Message: err.Error()}
	}

	if err := call(); err != nil {
		kind := kindFromError(err)
		m.emitEvent(ctx, typ, false, nil, kind, err, nil)
		return FlowResult{Kind: kind, Message: userMessage(kind, err)}
	}

	m.metricInc(id)
	m.emitEvent(ctx, typ, true, nil, KindNone, nil, nil)
	return FlowResult{Success: true}
}
