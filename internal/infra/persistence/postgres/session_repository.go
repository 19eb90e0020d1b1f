package postgres

import (
	"context"
	"time"

	"gatekit/internal/domain/entity"
	domainerrors "gatekit/internal/domain/errors"
	"gatekit/internal/domain/repository"
	"gatekit/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionRepository implements the domain.SessionRepository interface using GORM.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("session references missing user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	session.ID = sessionM.ID
	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByID retrieves a session by its unique ID. Expired sessions are not returned.
func (repo *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).
		First(&sessionM, "id = ? AND expires_at > ?", id, time.Now()).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by id")
	}

	return toSessionDomain(&sessionM), nil
}

// FindByTokenHash retrieves a session by its refresh token hash. Expired
// sessions are not returned.
func (repo *sessionRepository) FindByTokenHash(ctx context.Context, hash string) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).
		First(&sessionM, "token_hash = ? AND token_hash <> '' AND expires_at > ?", hash, time.Now()).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by token hash")
	}

	return toSessionDomain(&sessionM), nil
}

// Update modifies an existing session (token rotation, step-up verification).
func (repo *sessionRepository) Update(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Save(sessionM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to update session")
	}

	return nil
}

// DeleteByTokenHash deletes a session by its token hash.
func (repo *sessionRepository) DeleteByTokenHash(ctx context.Context, hash string) error {
	err := repo.db.WithContext(ctx).
		Where("token_hash = ? AND token_hash <> ''", hash).
		Delete(&model.SessionModel{}).
		Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete session")
	}

	return nil
}

// DeleteByUserID removes every session belonging to a user.
func (repo *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.SessionModel{}).
		Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete user sessions")
	}

	return nil
}

// toSessionDomain converts a GORM SessionModel to a domain Session entity.
func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:                   data.ID,
		UserID:               data.UserID,
		TokenHash:            data.TokenHash,
		SecondFactorVerified: data.SecondFactorVerified,
		AttemptedURL:         data.AttemptedURL,
		ExpiresAt:            data.ExpiresAt,
		CreatedAt:            data.CreatedAt,
	}
}

// fromSessionDomain converts a domain Session entity to a GORM SessionModel.
func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:                   data.ID,
		UserID:               data.UserID,
		TokenHash:            data.TokenHash,
		SecondFactorVerified: data.SecondFactorVerified,
		AttemptedURL:         data.AttemptedURL,
		ExpiresAt:            data.ExpiresAt,
		CreatedAt:            data.CreatedAt,
	}
}
