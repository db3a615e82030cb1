package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dropzone/internal/models"

	"github.com/redis/go-redis/v9"
)

// otp:{phone} -> JSON models.OTP. No TTL: codes stay valid until overwritten.
const keyOTP = "otp:%s"

// RedisOTPRepository is a Redis implementation of OTPRepository.
type RedisOTPRepository struct {
	rdb *redis.Client
}

// NewRedisOTPRepository creates a new instance of RedisOTPRepository.
func NewRedisOTPRepository(rdb *redis.Client) *RedisOTPRepository {
	return &RedisOTPRepository{rdb: rdb}
}

// Upsert overwrites the pending code for the phone.
func (r *RedisOTPRepository) Upsert(ctx context.Context, otp *models.OTP) error {
	otp.UpdatedAt = time.Now()
	data, err := json.Marshal(redisOTP{Phone: otp.Phone, CodeHash: otp.CodeHash, UpdatedAt: otp.UpdatedAt})
	if err != nil {
		return fmt.Errorf("failed to encode otp for %s: %w", otp.Phone, err)
	}
	if err := r.rdb.Set(ctx, fmt.Sprintf(keyOTP, otp.Phone), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to upsert otp for %s: %w", otp.Phone, err)
	}
	return nil
}

// GetByPhone retrieves the pending code for a phone.
func (r *RedisOTPRepository) GetByPhone(ctx context.Context, phone string) (*models.OTP, error) {
	val, err := r.rdb.Get(ctx, fmt.Sprintf(keyOTP, phone)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("otp for %s: %w", phone, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get otp for %s: %w", phone, err)
	}
	var stored redisOTP
	if err := json.Unmarshal(val, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode otp for %s: %w", phone, err)
	}
	return &models.OTP{Phone: stored.Phone, CodeHash: stored.CodeHash, UpdatedAt: stored.UpdatedAt}, nil
}

// redisOTP is the stored shape; models.OTP hides the hash from JSON.
type redisOTP struct {
	Phone     string    `json:"phone"`
	CodeHash  string    `json:"code_hash"`
	UpdatedAt time.Time `json:"updated_at"`
}
