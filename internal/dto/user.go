package dto

import "time"

type UserResponse struct {
	ID           string    `json:"id"`
	UserName     string    `json:"userName"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	FullName     string    `json:"fullName,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Role         string    `json:"role,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type DocumentResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Username string `json:"username"`
}

type PresignResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
