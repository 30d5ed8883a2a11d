package identity

// Role is the coarse staff role of a user
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// Resource is a permission-gated area of the back office
type Resource string

const (
	ResourceCustomers Resource = "customers"
	ResourceProducts  Resource = "products"
	ResourceOrders    Resource = "orders"
	ResourceInquiries Resource = "inquiries"
	ResourceReports   Resource = "reports"
	ResourceUsers     Resource = "users"
)

// AllResources lists every permission-gated resource
func AllResources() []Resource {
	return []Resource{
		ResourceCustomers, ResourceProducts, ResourceOrders,
		ResourceInquiries, ResourceReports, ResourceUsers,
	}
}

// IsValid checks if the resource is valid
func (r Resource) IsValid() bool {
	for _, res := range AllResources() {
		if r == res {
			return true
		}
	}
	return false
}

// Permissions holds the per-resource flags of a user
type Permissions struct {
	Customers bool `json:"customers"`
	Products  bool `json:"products"`
	Orders    bool `json:"orders"`
	Inquiries bool `json:"inquiries"`
	Reports   bool `json:"reports"`
	Users     bool `json:"users"`
}

// Has reports whether the flag for resource is set
func (p Permissions) Has(resource Resource) bool {
	switch resource {
	case ResourceCustomers:
		return p.Customers
	case ResourceProducts:
		return p.Products
	case ResourceOrders:
		return p.Orders
	case ResourceInquiries:
		return p.Inquiries
	case ResourceReports:
		return p.Reports
	case ResourceUsers:
		return p.Users
	}
	return false
}

// With returns a copy with the flag for resource set to allowed
func (p Permissions) With(resource Resource, allowed bool) Permissions {
	switch resource {
	case ResourceCustomers:
		p.Customers = allowed
	case ResourceProducts:
		p.Products = allowed
	case ResourceOrders:
		p.Orders = allowed
	case ResourceInquiries:
		p.Inquiries = allowed
	case ResourceReports:
		p.Reports = allowed
	case ResourceUsers:
		p.Users = allowed
	}
	return p
}

// Granted lists the resources whose flag is set
func (p Permissions) Granted() []string {
	out := make([]string, 0, 6)
	for _, r := range AllResources() {
		if p.Has(r) {
			out = append(out, string(r))
		}
	}
	return out
}

// PermissionsFromList builds flags from resource names, ignoring unknown ones
func PermissionsFromList(resources []string) Permissions {
	var p Permissions
	for _, r := range resources {
		p = p.With(Resource(r), true)
	}
	return p
}

// DefaultPermissions returns the flags a new user of role gets when none are given
func DefaultPermissions(role Role) Permissions {
	switch role {
	case RoleAdmin:
		return Permissions{true, true, true, true, true, true}
	case RoleManager:
		return Permissions{Customers: true, Products: true, Orders: true, Inquiries: true, Reports: true}
	default:
		return Permissions{Customers: true, Products: true, Orders: true, Inquiries: true}
	}
}
