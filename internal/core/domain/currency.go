package domain

// Currency represents a supported currency (master data, seeded by migration).
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // ISO 4217 code, Primary Key
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Precision    int    `json:"precision"` // Decimal places (e.g. 2 for SAR, 0 for JPY)
	AuditFields
}
