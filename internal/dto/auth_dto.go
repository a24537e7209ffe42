package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email        string `json:"email" form:"email" validate:"required,email,max=64"`
	Password     string `json:"password" form:"password" validate:"required,min=6,max=72"`
	CaptchaToken string `json:"cf-turnstile-response" form:"cf-turnstile-response"`
}

type LoginRequest struct {
	Email        string `json:"email" form:"email" validate:"required,email,max=64"`
	Password     string `json:"password" form:"password" validate:"required,min=6,max=72"`
	CaptchaToken string `json:"cf-turnstile-response" form:"cf-turnstile-response"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}

type UserDTO struct {
	Id    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
