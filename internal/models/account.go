package models

import (
	"time"
)

type Role string

const (
	RoleReader Role = "reader"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

type AccountStatus string

const (
	StatusEnabled  AccountStatus = "enabled"
	StatusDisabled AccountStatus = "disabled"
)

// AccountState is the lifecycle position derived from token and status fields.
type AccountState string

const (
	StatePending     AccountState = "pending"
	StateActive      AccountState = "active"
	StateDeactivated AccountState = "deactivated"
)

type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Status       AccountStatus
	TrackingKey  *string // minted at activation, embedded in session tokens

	SignupToken          *string
	SignupTokenExpiresAt *time.Time
	ActivatedAt          *time.Time
	ResetToken           *string
	ResetTokenExpiresAt  *time.Time

	Profile Profile

	DisabledAt *time.Time
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Profile holds the self-service fields an account may edit.
type Profile struct {
	Alias            string
	Bio              string
	PictureURL       string
	Phone            string
	LocationCountry  string
	LocationProvince string
	LocationCity     string
	LocationAddress  string
}

func (a *Account) IsActivated() bool {
	return a.ActivatedAt != nil
}

func (a *Account) IsDisabled() bool {
	return a.Status == StatusDisabled
}

// SignupTokenExpired reports whether the signup token lapsed before now.
// A pending account without an expiry is treated as expired.
func (a *Account) SignupTokenExpired(now time.Time) bool {
	if a.SignupTokenExpiresAt == nil {
		return true
	}
	return !now.Before(*a.SignupTokenExpiresAt)
}

// State derives the lifecycle state. Deactivation takes precedence over activation.
func (a *Account) State() AccountState {
	switch {
	case a.IsDisabled():
		return StateDeactivated
	case a.IsActivated():
		return StateActive
	default:
		return StatePending
	}
}

// AccountPage is one page of an account listing.
type AccountPage struct {
	Accounts []*Account
	Total    int
	Page     int
	PageSize int
	NextPage *int
}
