package dto

import "github.com/hongminglow/society-be/internal/models"

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token   string         `json:"token"`
	Account models.Account `json:"account"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}
