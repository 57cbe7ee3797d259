package billing

import "github.com/go-chi/chi/v5"

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.listInvoices)
	r.Post("/invoices", h.saveInvoice)
	r.Get("/invoices/{id}", h.showInvoice)
	r.Delete("/invoices/{id}", h.deleteInvoice)

	r.Get("/credits", h.listCredits)
	r.Post("/payments", h.recordPayment)
	r.Get("/aging", h.aging)
}

// MountCustomerRoutes registers the per-customer billing views inside the
// customers subrouter.
func (h *Handler) MountCustomerRoutes(r chi.Router) {
	r.Get("/{id}/statement", h.statement)
	r.Get("/{id}/outstanding", h.outstanding)
}
