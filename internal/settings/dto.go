package settings

// UpdateSettingsRequest carries every editable field. The password hash is
// managed by the auth flow and cannot be set here.
type UpdateSettingsRequest struct {
	BusinessName    string `json:"businessName" validate:"required"`
	BusinessPhone   string `json:"businessPhone"`
	BusinessEmail   string `json:"businessEmail" validate:"omitempty,email"`
	BusinessAddress string `json:"businessAddress"`
	BusinessGST     string `json:"businessGst"`

	InvoicePrefix     string  `json:"invoicePrefix" validate:"required"`
	QuotationPrefix   string  `json:"quotationPrefix" validate:"required"`
	DefaultTax        float64 `json:"defaultTax" validate:"gte=0,lte=100"`
	PaymentTerms      int     `json:"paymentTerms" validate:"gte=0"`
	LowStockThreshold int     `json:"lowStockThreshold" validate:"gte=0"`
	AutoBackup        string  `json:"autoBackup" validate:"oneof=off daily weekly"`
}
