package repositories

import (
	"context"

	"dropzone/internal/models"
)

// OTPRepository stores the pending one-time code per phone.
type OTPRepository interface {
	Upsert(ctx context.Context, otp *models.OTP) error
	GetByPhone(ctx context.Context, phone string) (*models.OTP, error)
}

// SessionRepository stores issued sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
}
