package shared

import "strings"

// Address is a postal address shared by customers, inquiries and orders
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Full joins the non-empty components with ", "
func (a Address) Full() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// IsEmpty reports whether every component is blank
func (a Address) IsEmpty() bool {
	return a.Full() == ""
}

// FillEmpty copies components from src into a wherever a's component is blank
func (a Address) FillEmpty(src Address) Address {
	a.Street = firstNonBlank(a.Street, src.Street)
	a.City = firstNonBlank(a.City, src.City)
	a.State = firstNonBlank(a.State, src.State)
	a.PostalCode = firstNonBlank(a.PostalCode, src.PostalCode)
	a.Country = firstNonBlank(a.Country, src.Country)
	return a
}

// Trimmed returns the address with whitespace stripped from every component
func (a Address) Trimmed() Address {
	return Address{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

func firstNonBlank(current, candidate string) string {
	if strings.TrimSpace(current) != "" {
		return current
	}
	return strings.TrimSpace(candidate)
}
