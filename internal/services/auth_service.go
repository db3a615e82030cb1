package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dropzone/internal/models"
	"dropzone/internal/repositories"
	"dropzone/pkg/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultDemoCode is the code every phone receives. No SMS is sent.
const DefaultDemoCode = "123456"

// AuthConfig holds the settings of the OTP login flow.
type AuthConfig struct {
	DemoCode  string
	JWTSecret string
	TokenTTL  time.Duration
}

// AuthService handles the phone + OTP login flow and session issuance.
type AuthService struct {
	otps      repositories.OTPRepository
	sessions  repositories.SessionRepository
	events    EventPublisher
	demoCode  string
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(otps repositories.OTPRepository, sessions repositories.SessionRepository, events EventPublisher, cfg AuthConfig) *AuthService {
	if cfg.DemoCode == "" {
		cfg.DemoCode = DefaultDemoCode
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		otps:      otps,
		sessions:  sessions,
		events:    events,
		demoCode:  cfg.DemoCode,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
	}
}

// RequestCode stores a pending code for the phone, replacing any previous
// one, and returns the code so the demo client can show it.
func (s *AuthService) RequestCode(ctx context.Context, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("phone required: %w", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.demoCode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	if err := s.otps.Upsert(ctx, &models.OTP{Phone: phone, CodeHash: string(hash)}); err != nil {
		return "", err
	}

	publish(s.events, EventOTPRequested, OTPRequestedEvent{Phone: phone, Code: s.demoCode})
	return s.demoCode, nil
}

// SessionGrant is the result of a successful verification.
type SessionGrant struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// VerifyCode checks the code against the pending one for the phone and, on
// a match, issues a new session. Every successful call mints a new session.
func (s *AuthService) VerifyCode(ctx context.Context, phone, code string) (*SessionGrant, error) {
	phone = strings.TrimSpace(phone)

	otp, err := s.otps.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.OTPVerifications.WithLabelValues("rejected").Inc()
			return nil, fmt.Errorf("invalid code: %w", ErrUnauthorized)
		}
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)); err != nil {
		metrics.OTPVerifications.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("invalid code: %w", ErrUnauthorized)
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		Phone:     phone,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	expiresAt := session.CreatedAt.Add(s.tokenTTL)
	token, err := s.signToken(session, expiresAt)
	if err != nil {
		return nil, err
	}
	metrics.OTPVerifications.WithLabelValues("success").Inc()
	return &SessionGrant{SessionID: session.ID, Token: token, ExpiresAt: expiresAt}, nil
}

// SessionClaims are the JWT claims of a session token.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	Phone     string `json:"phone"`
	jwt.RegisteredClaims
}

func (s *AuthService) signToken(session *models.Session, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		SessionID: session.ID,
		Phone:     session.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.ID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a session token.
func (s *AuthService) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v: %w", err, ErrUnauthorized)
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("invalid token: %w", ErrUnauthorized)
	}
	return claims, nil
}

// CurrentSession returns the stored session for an id taken from a token.
func (s *AuthService) CurrentSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("unknown session: %w", ErrUnauthorized)
		}
		return nil, err
	}
	return session, nil
}
