package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/society-be/internal/accounts"
	"github.com/hongminglow/society-be/internal/http/respond"
	"github.com/hongminglow/society-be/internal/models/dto"
)

// AuthHandler owns the self-service endpoints: register, login, me and
// change-password.
type AuthHandler struct {
	accounts *accounts.Service
	log      *zap.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *accounts.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: svc, log: log}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/register", h.handleRegister)
	mux.HandleFunc("/login", h.handleLogin)
	mux.HandleFunc("/me", h.handleMe)
	mux.HandleFunc("/change-password", h.handleChangePassword)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req dto.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	created, err := h.accounts.Register(r.Context(), accounts.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "User created successfully", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req dto.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	res, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: res.Token, Account: res.Account})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	account, ok := requireSession(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, "ok", account)
}

func (h *AuthHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	account, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.accounts.ChangeOwnPassword(r.Context(), account, req.NewPassword); err != nil {
		writeError(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Password changed successfully", nil)
}
