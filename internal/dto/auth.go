package dto

// RegisterRequest is the create-or-update payload. Optional fields are
// pointers so "absent" and "set to empty" stay distinguishable; the
// create path requires userName, email, password and phoneNumber.
type RegisterRequest struct {
	ID           *string `json:"id" binding:"omitempty"`
	UserName     *string `json:"userName" binding:"omitempty,username"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Password     *string `json:"password" binding:"omitempty,passwd"`
	PhoneNumber  *string `json:"phoneNumber" binding:"omitempty,phone"`
	FullName     *string `json:"fullName" binding:"omitempty,max=100"`
	ProfileImage *string `json:"profileImage" binding:"omitempty"`
	Role         *string `json:"role" binding:"omitempty,max=50"`
}

// LoginRequest authenticates by identifier (email, username or phone)
// plus either a password or an OTP.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"omitempty"`
	OTP        string `json:"otp" binding:"omitempty"`
}

type OTPRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// RefreshRequest carries the current pair. The refresh token may come
// from the cookie instead of the body.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"omitempty"`
	AccessToken  string `json:"accessToken" binding:"omitempty"`
}

type ResetPasswordRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required,passwd"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
