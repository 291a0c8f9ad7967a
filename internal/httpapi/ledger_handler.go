package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
	"github.com/Abdelhameed97/bookshare-sub001/internal/ledger"
	"github.com/Abdelhameed97/bookshare-sub001/internal/money"
)

type LedgerHandler struct {
	view   *ledger.View
	logger *zap.Logger
}

func NewLedgerHandler(view *ledger.View, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{view: view, logger: logger}
}

type ledgerResponse struct {
	Payments  []domain.LedgerEntry `json:"payments"`
	TotalPaid money.Money          `json:"total_paid"`
}

// ListPayments refreshes the ledger and returns it, optionally narrowed
// by ?method= and ?status=. A refresh failure is only fatal when there is
// no previously loaded snapshot to fall back on.
func (h *LedgerHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	if err := h.view.Refresh(r.Context()); err != nil {
		if !h.view.Loaded() {
			mapError(w, err)
			return
		}
		h.logger.Warn("ledger refresh failed, serving previous snapshot", zap.Error(err))
	}

	entries := h.view.Entries()
	if method := r.URL.Query().Get("method"); method != "" {
		entries = h.view.ByMethod(domain.PaymentMethod(method))
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.Status == domain.PaymentStatus(status) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	respondJSON(w, http.StatusOK, ledgerResponse{
		Payments:  entries,
		TotalPaid: h.view.TotalByStatus(domain.PaymentStatusPaid),
	})
}
