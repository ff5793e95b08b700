package domain

// Discount types.
const (
	DiscountPercent   = "percent"
	DiscountExemption = "exemption"
)

// Discount is one statutory fare discount ("ulga ustawowa") that crews look
// up when checking tickets.
type Discount struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// DisplayValue renders the discount the way it is printed on a ticket.
func (d Discount) DisplayValue() string {
	switch d.Type {
	case DiscountPercent:
		return d.Value + "%"
	case DiscountExemption:
		return "Zwolnienie " + d.Value + "%"
	default:
		return d.Value
	}
}
