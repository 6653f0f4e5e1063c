package plans

import (
	"math"
	"time"
)

// TaxRate is the fixed VAT rate applied to every plan-change invoice.
const TaxRate = 0.18

// Invoice is the informational billing record returned by every plan
// change. It carries no retry or rollback semantics and is not a ledger
// of record.
type Invoice struct {
	TenantID     string    `json:"tenant_id"`
	Plan         string    `json:"plan"`
	Months       int       `json:"months"`
	MonthlyPrice float64   `json:"monthly_price"`
	Subtotal     float64   `json:"subtotal"`
	Tax          float64   `json:"tax"`
	Total        float64   `json:"total"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ComputeInvoice builds the invoice for months of a plan at a monthly
// price. Amounts are rounded to whole currency units.
func ComputeInvoice(tenantID, plan string, months int, monthlyPrice float64) Invoice {
	subtotal := float64(months) * monthlyPrice
	tax := math.Round(subtotal * TaxRate)
	return Invoice{
		TenantID:     tenantID,
		Plan:         plan,
		Months:       months,
		MonthlyPrice: monthlyPrice,
		Subtotal:     subtotal,
		Tax:          tax,
		Total:        subtotal + tax,
		IssuedAt:     time.Now(),
	}
}
