package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/society-be/internal/http/respond"
	"github.com/hongminglow/society-be/internal/models"
	"github.com/hongminglow/society-be/internal/models/dto"
	"github.com/hongminglow/society-be/internal/resets"
)

// ResetsHandler serves the reset request queue: anonymous submission plus
// the admin approve, reject and list endpoints.
type ResetsHandler struct {
	resets *resets.Service
	log    *zap.Logger
}

// NewResetsHandler constructs the handler.
func NewResetsHandler(svc *resets.Service, log *zap.Logger) *ResetsHandler {
	return &ResetsHandler{resets: svc, log: log}
}

// Register attaches the reset request routes to the mux.
func (h *ResetsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/request-password-reset", h.handleSubmit)
	mux.HandleFunc("/admin/approve-reset", h.resolveAs(models.ResetApproved))
	mux.HandleFunc("/admin/reject-reset", h.resolveAs(models.ResetRejected))
	mux.HandleFunc("/admin/reset-requests", h.handleList)
}

func (h *ResetsHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req dto.SubmitResetRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	res, err := h.resets.Submit(r.Context(), req.Email)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res.Message, nil)
}

func (h *ResetsHandler) resolveAs(decision models.ResetStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		actor, ok := requireRole(w, r, h.log, models.ResetResolvers)
		if !ok {
			return
		}
		var req dto.ResolveResetRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, h.log, err)
			return
		}
		resolved, err := h.resets.Resolve(r.Context(), actor, req.ResetRequestID, decision, req.AdminNotes)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		respond.JSON(w, http.StatusOK, "Reset request "+string(decision), resolved)
	}
}

func (h *ResetsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	actor, ok := requireRole(w, r, h.log, models.ResetResolvers)
	if !ok {
		return
	}
	status := models.ResetStatus(r.URL.Query().Get("status"))
	list, err := h.resets.List(r.Context(), actor, status)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", list)
}
