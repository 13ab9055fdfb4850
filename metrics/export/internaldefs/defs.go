package internaldefs

import (
	sessionguard "github.com/cobaltgrid/sessionguard"
)

// CounterDef pairs a guard metric ID with its stable exported name.
type CounterDef struct {
	ID   sessionguard.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter. Order is the exposition order.
var CounterDefs = []CounterDef{
	{ID: sessionguard.MetricSignInSuccess, Name: "sessionguard_sign_in_success_total", Help: "Successful sign-ins."},
	{ID: sessionguard.MetricSignInFailure, Name: "sessionguard_sign_in_failure_total", Help: "Failed sign-in attempts."},
	{ID: sessionguard.MetricSignInLockedOut, Name: "sessionguard_sign_in_locked_out_total", Help: "Sign-ins blocked by the lockout window."},
	{ID: sessionguard.MetricSignUpSuccess, Name: "sessionguard_sign_up_success_total", Help: "Successful sign-ups."},
	{ID: sessionguard.MetricSignUpRejected, Name: "sessionguard_sign_up_rejected_total", Help: "Sign-ups rejected locally or by the provider."},
	{ID: sessionguard.MetricRefreshSuccess, Name: "sessionguard_refresh_success_total", Help: "Successful session refreshes."},
	{ID: sessionguard.MetricRefreshFailure, Name: "sessionguard_refresh_failure_total", Help: "Failed session refreshes."},
	{ID: sessionguard.MetricSessionExpired, Name: "sessionguard_session_expired_total", Help: "Sessions ended by hard expiry."},
	{ID: sessionguard.MetricSessionRestored, Name: "sessionguard_session_restored_total", Help: "Sessions restored on process start."},
	{ID: sessionguard.MetricSignOut, Name: "sessionguard_sign_out_total", Help: "Explicit local sign-outs."},
	{ID: sessionguard.MetricRemoteSignOut, Name: "sessionguard_remote_sign_out_total", Help: "Sign-outs pushed by the provider."},
	{ID: sessionguard.MetricActivityRecorded, Name: "sessionguard_activity_recorded_total", Help: "Tracked user-activity events."},
	{ID: sessionguard.MetricStorageWriteFailure, Name: "sessionguard_storage_write_failure_total", Help: "Swallowed storage write failures."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = "sessionguard_audit_dropped_total"

// AuditDroppedHelp documents AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
