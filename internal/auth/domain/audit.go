package domain

import "time"

type AuditAction string

const (
	AuditCreateUser        AuditAction = "create_user"
	AuditUpdateUser        AuditAction = "update_user"
	AuditToggleUserStatus  AuditAction = "toggle_user_status"
	AuditCreateStaff       AuditAction = "create_staff"
	AuditUpdateStaff       AuditAction = "update_staff"
	AuditToggleStaffStatus AuditAction = "toggle_staff_status"
	AuditUpdateProfile     AuditAction = "update_profile"
	AuditChangePassword    AuditAction = "change_password"
	AuditEnable2FA         AuditAction = "enable_2fa"
	AuditReset2FA          AuditAction = "reset_2fa"
	AuditUserLogout        AuditAction = "user_logout"
	AuditEncryptTOTPSecret AuditAction = "encrypt_totp_secret"
)

// Resource types referenced by audit records.
const (
	ResourceUser    = "user"
	ResourceSession = "session"
)

// ActorDetails is a snapshot of the actor taken when the record was written.
type ActorDetails struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// AuditRecord is an append-only entry in the audit log.
type AuditRecord struct {
	ID           string
	ActorUserID  *string
	ActorDetails *ActorDetails
	Action       AuditAction
	ResourceType string
	ResourceID   *string
	Details      map[string]any
	IPAddress    *string
	UserAgent    *string
	OccurredAt   time.Time
}
