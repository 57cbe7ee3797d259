package billing

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
)

// Handler manages billing endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListInvoices(r.Context(), ListInvoicesRequest{
		Status:     DocumentStatus(r.URL.Query().Get("status")),
		CustomerID: r.URL.Query().Get("customerId"),
	})
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) showInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) saveInvoice(w http.ResponseWriter, r *http.Request) {
	var draft DraftInvoice
	if err := httpx.DecodeJSON(r, &draft); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(draft); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	invoice, err := h.service.SaveInvoice(r.Context(), draft)
	if err != nil {
		h.logger.Error("save invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusOK
	if draft.ID == "" {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, invoice)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteInvoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCredits(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListCredits(r.Context(), ListCreditsRequest{
		Status:     DocumentStatus(r.URL.Query().Get("status")),
		CustomerID: r.URL.Query().Get("customerId"),
	})
	if err != nil {
		h.logger.Error("list credits", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	result, err := h.service.RecordPayment(r.Context(), req)
	if err != nil {
		h.logger.Error("record payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result.Unallocated > 0 {
		h.logger.Warn("payment exceeds outstanding, remainder discarded",
			slog.String("customerId", req.CustomerID),
			slog.Float64("unallocated", result.Unallocated))
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	from, okFrom := parseDate(r.URL.Query().Get("from"))
	to, okTo := parseDate(r.URL.Query().Get("to"))
	if !okFrom || !okTo {
		httpx.RespondError(w, fmt.Errorf("%w: from and to dates are required (YYYY-MM-DD)", httpx.ErrValidation))
		return
	}
	statement, err := h.service.Statement(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		h.logger.Error("generate statement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

func (h *Handler) outstanding(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.Outstanding(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"outstanding": total})
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if t, ok := parseDate(r.URL.Query().Get("asOf")); ok {
		asOf = t
	}
	bucket, err := h.service.Aging(r.Context(), asOf)
	if err != nil {
		h.logger.Error("aging report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bucket)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	// Records are stamped with time.Now in the server's location; parsing
	// query dates in the same location keeps day boundaries aligned.
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
