package dto

import "time"

// SetupRequest registers a new user and completes their profile in one step.
type SetupRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=30"`
	Password string  `json:"password" binding:"required,min=6"`
	Name     string  `json:"name" binding:"required"`
	Grade    string  `json:"grade" binding:"required"`
	Age      *int    `json:"age" binding:"omitempty,min=5,max=120"`
	Email    string  `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID                uint      `json:"id"`
	Username          string    `json:"username"`
	Name              string    `json:"name"`
	Grade             string    `json:"grade"`
	Age               *int      `json:"age,omitempty"`
	Email             string    `json:"email,omitempty"`
	Phone             *string   `json:"phone,omitempty"`
	PreferredLanguage string    `json:"preferred_language"`
	IsSetupComplete   bool      `json:"is_setup_complete"`
	CreatedAt         time.Time `json:"created_at"`
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access"`
}

type UpdateProfileRequest struct {
	Name              *string `json:"name"`
	Grade             *string `json:"grade"`
	Age               *int    `json:"age" binding:"omitempty,min=5,max=120"`
	Email             *string `json:"email" binding:"omitempty,email"`
	Phone             *string `json:"phone"`
	PreferredLanguage *string `json:"preferred_language"`
}
