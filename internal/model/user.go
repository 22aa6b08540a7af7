package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the credential store row. AccessToken/RefreshToken hold the
// last-issued pair; a refresh token only validates while it equals the
// stored value, so issuing a new pair invalidates the previous one.
type User struct {
	ID           string         `gorm:"column:id;type:uuid;primaryKey"`
	UserName     string         `gorm:"column:user_name;uniqueIndex;not null"`
	Email        string         `gorm:"column:email;uniqueIndex;not null"`
	PhoneNumber  string         `gorm:"column:phone_number;uniqueIndex;not null"`
	Password     string         `gorm:"column:password;not null"` // bcrypt hash, never plaintext
	FullName     string         `gorm:"column:full_name"`
	ProfileImage string         `gorm:"column:profile_image"`
	Role         string         `gorm:"column:role"`
	OTP          string         `gorm:"column:otp"` // cleared on successful use
	AccessToken  string         `gorm:"column:access_token"`
	RefreshToken string         `gorm:"column:refresh_token"`
	Attributes   datatypes.JSON `gorm:"column:attributes"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
