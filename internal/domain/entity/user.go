// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a unique account.
// Email is the primary login identifier and the cross-provider merge key.
type User struct {
	ID           uuid.UUID  // The unique identifier for the user.
	Email        string     // Unique, stored lowercase. Primary login identifier.
	PasswordHash string     // bcrypt hash; empty for federated-only accounts.
	Profile      Profile    // Display information, partly backfilled from federated profiles.
	TwoFactor    TwoFactor  // Second-factor enrollment state.
	ResetToken   string     // bcrypt hash of the active password-reset token; empty outside a reset window.
	ResetExpires *time.Time // Absolute expiry of the active reset token.
	CreatedAt    time.Time  // Timestamp of when this account was created.
	LastLoginAt  *time.Time // Timestamp of the most recent successful login.
	UpdatedAt    time.Time  // Timestamp of the last modification to this user's data.
}

// Profile holds the user's display information.
type Profile struct {
	Name       string
	Gender     string
	Location   string
	Website    string
	PictureURL string
	Phone      string
}

// HasPassword reports whether the account carries a local password credential.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// InResetWindow reports whether an unexpired password-reset token is present.
func (u *User) InResetWindow(now time.Time) bool {
	return u.ResetToken != "" && u.ResetExpires != nil && u.ResetExpires.After(now)
}

// ClearResetToken removes the reset token state after redemption or a new password set.
func (u *User) ClearResetToken() {
	u.ResetToken = ""
	u.ResetExpires = nil
}

// BackfillProfile copies non-empty fields from a federated profile into empty
// local profile fields, never overwriting existing values.
func (u *User) BackfillProfile(p *FederatedProfile) {
	if u.Profile.Name == "" {
		u.Profile.Name = p.DisplayName
	}
	if u.Profile.Gender == "" {
		u.Profile.Gender = p.Gender
	}
	if u.Profile.Location == "" {
		u.Profile.Location = p.Location
	}
	if u.Profile.Website == "" {
		u.Profile.Website = p.Website
	}
	if u.Profile.PictureURL == "" {
		u.Profile.PictureURL = p.PictureURL
	}
}
