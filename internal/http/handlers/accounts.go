package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/society-be/internal/accounts"
	"github.com/hongminglow/society-be/internal/http/respond"
	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/models/dto"
)

// AdminAccountsHandler serves the account administration endpoints. Every
// route is limited to app_admin and management.
type AdminAccountsHandler struct {
	accounts *accounts.Service
	log      *zap.Logger
}

// NewAdminAccountsHandler constructs the handler.
func NewAdminAccountsHandler(svc *accounts.Service, log *zap.Logger) *AdminAccountsHandler {
	return &AdminAccountsHandler{accounts: svc, log: log}
}

// Register attaches the admin account routes to the mux.
func (h *AdminAccountsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/admin/create-user", h.handleCreate)
	mux.HandleFunc("/admin/reset-password", h.handleResetPassword)
	mux.HandleFunc("/admin/update-role", h.handleUpdateRole)
}

func (h *AdminAccountsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	actor, ok := requireRole(w, r, h.log, models.AccountAdmins)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	// Unknown roles are rejected by the service with its own message.
	role, known := models.ParseRole(req.Role)
	if !known {
		role = models.Role(req.Role)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	res, err := h.accounts.CreateAccount(r.Context(), actor, accounts.CreateAccountInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Role:       role,
		UnitID:     req.UnitID,
		UnitNumber: req.UnitNumber,
		IsActive:   active,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "User created successfully", res)
}

func (h *AdminAccountsHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	actor, ok := requireRole(w, r, h.log, models.AccountAdmins)
	if !ok {
		return
	}
	var req dto.ResetPasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.accounts.ResetPassword(r.Context(), actor, req.UserID, req.NewPassword); err != nil {
		writeError(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Password reset successfully", nil)
}

func (h *AdminAccountsHandler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	actor, ok := requireRole(w, r, h.log, models.AccountAdmins)
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.accounts.UpdateRole(r.Context(), actor, req.UserID, req.Role); err != nil {
		writeError(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Role updated successfully", nil)
}
