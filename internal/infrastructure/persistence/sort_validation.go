package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"display_name":  true,
	"role":          true,
	"last_login_at": true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"email":           true,
	"company":         true,
	"status":          true,
	"business_type":   true,
	"total_orders":    true,
	"total_revenue":   true,
	"last_order_date": true,
	"last_contact":    true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"name":           true,
	"category":       true,
	"uniform_type":   true,
	"base_price":     true,
	"stock_quantity": true,
	"total_sold":     true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at":             true,
	"updated_at":             true,
	"order_number":           true,
	"status":                 true,
	"payment_status":         true,
	"total_amount":           true,
	"payment_due_date":       true,
	"expected_delivery_date": true,
}

// InquirySortFields contains allowed sort fields for inquiries
var InquirySortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"inquiry_number": true,
	"customer_name":  true,
	"status":         true,
	"priority":       true,
	"source":         true,
	"next_follow_up": true,
	"quantity":       true,
}
