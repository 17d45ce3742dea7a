package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hongminglow/society-be/internal/apperr"
	"github.com/hongminglow/society-be/internal/auth"
	"github.com/hongminglow/society-be/internal/http/respond"
	"github.com/hongminglow/society-be/internal/models"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid JSON payload")
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apperr.Validation(describe(fieldErrs[0]))
		}
		return apperr.Validation(err.Error())
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// allowMethod writes 405 unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// requireSession returns the request's account or writes 401.
func requireSession(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	account := auth.AccountFromContext(r.Context())
	if account == nil {
		respond.Error(w, http.StatusUnauthorized, apperr.ErrUnauthenticated.Error())
		return nil, false
	}
	return account, true
}

// requireRole runs the role gate before the body is read, so callers without
// a session or with the wrong role get 401/403 whatever they sent.
func requireRole(w http.ResponseWriter, r *http.Request, log *zap.Logger, allowed models.RoleSet) (*models.Account, bool) {
	account := auth.AccountFromContext(r.Context())
	if err := auth.RequireRole(account, allowed); err != nil {
		writeError(w, log, err)
		return nil, false
	}
	return account, true
}

// statusFor maps a service error onto its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrPasswordChangeRequired), errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with the envelope. Categorized errors keep their
// message; anything unrecognized is logged and hidden.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError && !errors.Is(err, apperr.ErrUpstream) {
		log.Error("unhandled error", zap.Error(err))
		respond.Error(w, status, "internal server error")
		return
	}
	if status == http.StatusInternalServerError {
		log.Warn("upstream failure", zap.Error(err))
	}
	respond.Error(w, status, err.Error())
}
