package postgres

import (
	"context"
	"time"

	"gatekit/internal/domain/entity"
	domainerrors "gatekit/internal/domain/errors"
	"gatekit/internal/domain/repository"
	"gatekit/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// loginAttemptRepository implements the domain.LoginAttemptRepository interface using GORM.
type loginAttemptRepository struct {
	db *gorm.DB
}

// NewLoginAttemptRepository is the constructor for loginAttemptRepository.
func NewLoginAttemptRepository(db *gorm.DB) repository.LoginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

// Create inserts a login attempt record.
func (repo *loginAttemptRepository) Create(ctx context.Context, attempt *entity.LoginAttempt) error {
	attemptM := &model.LoginAttemptModel{
		ID:        attempt.ID,
		Email:     attempt.Email,
		IP:        attempt.IP,
		ExpiresAt: attempt.ExpiresAt,
	}

	if err := repo.db.WithContext(ctx).Create(attemptM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to record login attempt")
	}

	attempt.ID = attemptM.ID
	attempt.CreatedAt = attemptM.CreatedAt

	return nil
}

// DeleteExpired removes attempts past their TTL, returning how many were removed.
func (repo *loginAttemptRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&model.LoginAttemptModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to sweep login attempts")
	}

	return result.RowsAffected, nil
}
