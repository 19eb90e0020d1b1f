package entity

// ProviderType identifies a federated identity provider.
type ProviderType string

const (
	ProviderTypeGoogle   ProviderType = "google"
	ProviderTypeGitHub   ProviderType = "github"
	ProviderTypeFacebook ProviderType = "facebook"
	ProviderTypeTwitter  ProviderType = "twitter"
)

// Providers lists every supported federated identity provider.
var Providers = []ProviderType{
	ProviderTypeGoogle,
	ProviderTypeGitHub,
	ProviderTypeFacebook,
	ProviderTypeTwitter,
}

// ParseProvider returns the ProviderType for a path or form value,
// or false when the value names no supported provider.
func ParseProvider(s string) (ProviderType, bool) {
	for _, p := range Providers {
		if string(p) == s {
			return p, true
		}
	}

	return "", false
}

// SuppliesEmail reports whether the provider's profile payload carries an
// email address. Twitter does not, which makes email-based account merging
// impossible for it.
func (p ProviderType) SuppliesEmail() bool {
	return p != ProviderTypeTwitter
}
