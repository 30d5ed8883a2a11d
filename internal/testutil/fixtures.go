package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/partner"
	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence"
)

// TestPassword satisfies the password policy
const TestPassword = "Uniform2024"

// AdminPrincipal returns an admin caller with a fresh id.
func AdminPrincipal() identity.Principal {
	return identity.Principal{
		UserID:      uuid.New(),
		Username:    "admin",
		Role:        identity.RoleAdmin,
		Permissions: identity.DefaultPermissions(identity.RoleAdmin),
	}
}

// ManagerPrincipal returns a manager caller with a fresh id.
func ManagerPrincipal() identity.Principal {
	return identity.Principal{
		UserID:      uuid.New(),
		Username:    "manager",
		Role:        identity.RoleManager,
		Permissions: identity.DefaultPermissions(identity.RoleManager),
	}
}

// StaffPrincipal returns a staff caller with the default staff flags.
func StaffPrincipal(id uuid.UUID) identity.Principal {
	return identity.Principal{
		UserID:      id,
		Username:    "staff-" + id.String()[:8],
		Role:        identity.RoleStaff,
		Permissions: identity.DefaultPermissions(identity.RoleStaff),
	}
}

// CreateUser stores a user with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, username+"@uniformco.test", TestPassword, "", role, nil)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(db).Create(context.Background(), u))
	u.ClearDomainEvents()
	return u
}

// CustomerDetails returns valid details for a school customer.
func CustomerDetails(email string) partner.CustomerDetails {
	return partner.CustomerDetails{
		Name:         "Greenfield School",
		Email:        email,
		Phone:        "+1 555 0100",
		BusinessType: shared.BusinessTypeSchool,
		Address:      shared.Address{City: "Springfield", Country: "US"},
		Source:       "referral",
	}
}

// CreateCustomer stores a prospect customer.
func CreateCustomer(t *testing.T, db *gorm.DB, email string, createdBy *uuid.UUID) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(CustomerDetails(email), partner.CustomerStatusProspect, createdBy)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCustomerRepository(db).Create(context.Background(), c))
	c.ClearDomainEvents()
	return c
}

// ProductDetails returns valid details for a school shirt priced at 20 with a bulk tier from 50 units.
func ProductDetails(code string) catalog.ProductDetails {
	return catalog.ProductDetails{
		Code:         code,
		Name:         "Polo shirt " + code,
		Category:     catalog.CategoryShirt,
		UniformType:  catalog.UniformSchool,
		BasePrice:    decimal.NewFromInt(20),
		ReorderLevel: 5,
		Sizes:        []string{"S", "M", "L"},
		BulkPricing: []catalog.PriceTier{
			{MinQuantity: 50, MaxQuantity: 0, UnitPrice: decimal.NewFromInt(15)},
		},
	}
}

// CreateProduct stores an active product with the given stock.
func CreateProduct(t *testing.T, db *gorm.DB, code string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(ProductDetails(code), stock, nil)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormProductRepository(db).Create(context.Background(), p))
	p.ClearDomainEvents()
	return p
}

// Submission returns the contact form of a school asking for summer uniforms.
func Submission(email string) sales.Submission {
	return sales.Submission{
		CustomerName: "Acme School",
		Email:        email,
		Company:      "Acme Academy",
		Phone:        "+1 555 0199",
		BusinessType: shared.BusinessTypeSchool,
		Industry:     "education",
		Address:      shared.Address{Street: "1 School Lane", City: "Springfield", Country: "US"},
		UniformType:  "school",
		Quantity:     100,
		Requirements: sales.Requirements{Description: "summer uniforms"},
		Source:       sales.SourceWebsite,
	}
}
