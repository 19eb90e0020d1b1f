package model

import (
	"time"

	"github.com/google/uuid"
)

// FederatedIdentityModel mirrors the 'federated_identities' table. Two
// composite unique indexes back the linking invariants: a provider identity
// belongs to at most one account, and an account holds at most one identity
// per provider.
type FederatedIdentityModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_identities_user_id_provider"`
	Provider       string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_identities_provider_provider_user_id;uniqueIndex:idx_identities_user_id_provider"`
	ProviderUserID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_identities_provider_provider_user_id"`
	AccessToken    string    `gorm:"type:text"`
	TokenSecret    string    `gorm:"type:text"`
	CreatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (FederatedIdentityModel) TableName() string {
	return "federated_identities"
}
