package dto

type CreateUserRequest struct {
	FullName   string `json:"fullName" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"required"`
	Role       string `json:"role" validate:"required"`
	UnitID     string `json:"unitId"`
	UnitNumber string `json:"unitNumber"`
	// IsActive defaults to true when omitted.
	IsActive *bool `json:"isActive"`
}

type ResetPasswordRequest struct {
	UserID      string `json:"userId" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type UpdateRoleRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

type SubmitResetRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResolveResetRequest struct {
	ResetRequestID string `json:"resetRequestId" validate:"required"`
	AdminNotes     string `json:"adminNotes"`
}
