package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dropzone/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOTPRepository is a GORM implementation of OTPRepository.
type GORMOTPRepository struct {
	db *gorm.DB
}

// NewGORMOTPRepository creates a new instance of GORMOTPRepository.
func NewGORMOTPRepository(db *gorm.DB) *GORMOTPRepository {
	return &GORMOTPRepository{db: db}
}

// Upsert stores the code for the phone, overwriting any pending one.
func (r *GORMOTPRepository) Upsert(ctx context.Context, otp *models.OTP) error {
	otp.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoUpdates: clause.AssignmentColumns([]string{"code_hash", "updated_at"}),
		}).
		Create(otp).Error
	if err != nil {
		return fmt.Errorf("failed to upsert otp for %s: %w", otp.Phone, err)
	}
	return nil
}

// GetByPhone retrieves the pending code for a phone.
func (r *GORMOTPRepository) GetByPhone(ctx context.Context, phone string) (*models.OTP, error) {
	var otp models.OTP
	if err := r.db.WithContext(ctx).First(&otp, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("otp for %s: %w", phone, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get otp for %s: %w", phone, err)
	}
	return &otp, nil
}

// GORMSessionRepository is a GORM implementation of SessionRepository.
type GORMSessionRepository struct {
	db *gorm.DB
}

// NewGORMSessionRepository creates a new instance of GORMSessionRepository.
func NewGORMSessionRepository(db *gorm.DB) *GORMSessionRepository {
	return &GORMSessionRepository{db: db}
}

// Create persists a new session.
func (r *GORMSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its identity.
func (r *GORMSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return &session, nil
}
