package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the password gate.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type setupRequest struct {
	Password string `json:"password" validate:"required,min=4"`
}

type updateRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required,min=4"`
}

type unlockRequest struct {
	Password string `json:"password" validate:"required"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.service.Enabled(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	unlocked := !enabled
	if enabled {
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			unlocked = h.service.Valid(cookie.Value)
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"enabled": enabled, "unlocked": unlocked})
}

func (h *Handler) setup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if ok := h.decode(w, r, &req); !ok {
		return
	}
	if err := h.service.Setup(r.Context(), req.Password); err != nil {
		h.logger.Error("password setup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if ok := h.decode(w, r, &req); !ok {
		return
	}
	if err := h.service.Update(r.Context(), req.CurrentPassword, req.Password); err != nil {
		h.logger.Error("password update", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unlock(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if ok := h.decode(w, r, &req); !ok {
		return
	}
	token, err := h.service.Unlock(r.Context(), req.Password)
	if err != nil {
		h.logger.Warn("unlock failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lock(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		h.service.Lock(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return false
	}
	return true
}
