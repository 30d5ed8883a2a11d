package models

import (
	"time"

	"github.com/uniformco/backoffice/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
// Permission flags are individual boolean columns.
type UserModel struct {
	AggregateModel
	Username      string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email         string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash  string        `gorm:"type:varchar(255);not null"`
	DisplayName   string        `gorm:"type:varchar(100)"`
	Role          identity.Role `gorm:"type:varchar(20);not null;default:'staff';index"`
	IsActive      bool          `gorm:"not null;default:true"`
	PermCustomers bool          `gorm:"column:perm_customers;not null;default:false"`
	PermProducts  bool          `gorm:"column:perm_products;not null;default:false"`
	PermOrders    bool          `gorm:"column:perm_orders;not null;default:false"`
	PermInquiries bool          `gorm:"column:perm_inquiries;not null;default:false"`
	PermReports   bool          `gorm:"column:perm_reports;not null;default:false"`
	PermUsers     bool          `gorm:"column:perm_users;not null;default:false"`
	LastLoginAt   *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.AggregateRoot(),
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		DisplayName:       m.DisplayName,
		Role:              m.Role,
		IsActive:          m.IsActive,
		Permissions: identity.Permissions{
			Customers: m.PermCustomers,
			Products:  m.PermProducts,
			Orders:    m.PermOrders,
			Inquiries: m.PermInquiries,
			Reports:   m.PermReports,
			Users:     m.PermUsers,
		},
		LastLoginAt: m.LastLoginAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User entity
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:      u.Username,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		DisplayName:   u.DisplayName,
		Role:          u.Role,
		IsActive:      u.IsActive,
		PermCustomers: u.Permissions.Customers,
		PermProducts:  u.Permissions.Products,
		PermOrders:    u.Permissions.Orders,
		PermInquiries: u.Permissions.Inquiries,
		PermReports:   u.Permissions.Reports,
		PermUsers:     u.Permissions.Users,
		LastLoginAt:   u.LastLoginAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}
