package entity

import "time"

// TwoFactorType identifies the kind of enrolled second factor.
type TwoFactorType string

const (
	TwoFactorTypeTOTP TwoFactorType = "totp"
	TwoFactorTypeSMS  TwoFactorType = "sms"
)

// TwoFactor holds a user's second-factor enrollment state.
// A TOTP secret or pending SMS code may exist before Enabled becomes true;
// enrollment is finalized only after a successful code verification.
type TwoFactor struct {
	Enabled bool
	Type    TwoFactorType

	// TOTP enrollment. The shared secret is persisted in clear so the
	// provisioning QR can be re-displayed across page reloads.
	TOTPSecret string
	TOTPPeriod uint

	// SMS enrollment. Only the hash of the pending code is stored, keyed to
	// the candidate phone number until confirmed.
	PendingSMSHash    string
	PendingSMSPhone   string
	PendingSMSExpires *time.Time
}

// HasPendingSMSCode reports whether an unexpired SMS code is outstanding.
func (t *TwoFactor) HasPendingSMSCode(now time.Time) bool {
	return t.PendingSMSHash != "" && t.PendingSMSExpires != nil && t.PendingSMSExpires.After(now)
}

// ClearPendingSMS removes the pending SMS code state.
func (t *TwoFactor) ClearPendingSMS() {
	t.PendingSMSHash = ""
	t.PendingSMSExpires = nil
}

// Disable turns the second factor off. Opt-out is immediate and requires no
// re-verification; all enrollment material is discarded.
func (t *TwoFactor) Disable() {
	*t = TwoFactor{}
}
