package settings

// Counter names used for sequential document numbering.
const (
	InvoiceCounter   = "invoice"
	QuotationCounter = "quotation"
)

// Backup schedule values.
const (
	BackupOff    = "off"
	BackupDaily  = "daily"
	BackupWeekly = "weekly"
)

// Settings is the flat configuration object consumed by the core: business
// identity for documents, numbering prefixes, defaults and the optional
// password gate hash.
type Settings struct {
	BusinessName    string `json:"businessName"`
	BusinessPhone   string `json:"businessPhone"`
	BusinessEmail   string `json:"businessEmail"`
	BusinessAddress string `json:"businessAddress"`
	BusinessGST     string `json:"businessGst"`

	InvoicePrefix     string  `json:"invoicePrefix"`
	QuotationPrefix   string  `json:"quotationPrefix"`
	DefaultTax        float64 `json:"defaultTax"`
	PaymentTerms      int     `json:"paymentTerms"`
	LowStockThreshold int     `json:"lowStockThreshold"`
	AutoBackup        string  `json:"autoBackup"`

	PasswordHash string `json:"passwordHash,omitempty"`
}

// Defaults mirrors the seed values written on first run.
func Defaults() Settings {
	return Settings{
		BusinessName:      "Your Business Name",
		InvoicePrefix:     "INV",
		QuotationPrefix:   "QUO",
		DefaultTax:        18,
		PaymentTerms:      30,
		LowStockThreshold: 10,
		AutoBackup:        BackupWeekly,
	}
}
