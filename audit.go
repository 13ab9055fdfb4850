package sessionguard

import "context"

const (
	auditEventSignIn           = "sign_in"
	auditEventSignInLockedOut  = "sign_in_locked_out"
	auditEventSignUp           = "sign_up"
	auditEventSignOut          = "sign_out"
	auditEventRefresh          = "session_refresh"
	auditEventSessionExpired   = "session_expired"
	auditEventSessionRestored  = "session_restored"
	auditEventProviderPush     = "provider_push"
	auditEventStorageWriteFail = "storage_write_failed"
)

func (g *Guard) emitAudit(ctx context.Context, eventType, email, sessionID string, success bool, opErr error, metadata map[string]string) {
	if g.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: g.clock(),
		EventType: eventType,
		Email:     email,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		event.Metadata["user_agent"] = ua
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}

	g.audit.Emit(ctx, event)
}
