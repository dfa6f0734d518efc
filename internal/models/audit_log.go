package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Event types for the account audit trail
const (
	AuditEventSignup          = "signup"
	AuditEventActivate        = "activate"
	AuditEventSignin          = "signin"
	AuditEventSignout         = "signout"
	AuditEventResetRequest    = "password_reset_request"
	AuditEventResetRedeem     = "password_reset"
	AuditEventPasswordChange  = "password_change"
	AuditEventProfileUpdate   = "profile_update"
	AuditEventStatusChange    = "status_change"
	AuditEventAccountDelete   = "account_delete"
	AuditEventCompensatingDel = "signup_rollback"
)

type AuditLog struct {
	ID            string
	EventType     string
	ActorID       *string
	TargetID      *string
	Success       bool
	FailureReason *string
	IPAddress     *string
	UserAgent     *string
	Metadata      AuditMetadata
	CreatedAt     time.Time
}

// AuditMetadata holds additional context for audit events
type AuditMetadata map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (am *AuditMetadata) Scan(value interface{}) error {
	if value == nil {
		*am = make(AuditMetadata)
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*am = AuditMetadata(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (am AuditMetadata) Value() (driver.Value, error) {
	if am == nil {
		return nil, nil
	}
	return json.Marshal(map[string]interface{}(am))
}
