package models

import "time"

// OTP is the pending one-time code for a phone number. There is at most
// one per phone; requesting a new code overwrites it.
type OTP struct {
	Phone     string    `json:"phone" gorm:"primaryKey;type:varchar(32)" bson:"_id"`
	CodeHash  string    `json:"-" gorm:"type:varchar(255);not null" bson:"code_hash"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Session links an issued session identity to the phone that proved it.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Phone     string    `json:"phone" gorm:"index;type:varchar(32)" bson:"phone"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
