package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/partner"
	"github.com/uniformco/backoffice/internal/domain/shared"
)

// CustomerModel is the persistence model for the Customer domain entity.
// Notes and communications are loaded separately by the repository.
type CustomerModel struct {
	AggregateModel
	Name          string                 `gorm:"type:varchar(100);not null;index"`
	Email         string                 `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone         string                 `gorm:"type:varchar(30)"`
	Company       string                 `gorm:"type:varchar(200)"`
	Address       AddressColumns         `gorm:"embedded;embeddedPrefix:address_"`
	BusinessType  shared.BusinessType    `gorm:"type:varchar(20);not null;default:'';index"`
	Industry      string                 `gorm:"type:varchar(100)"`
	EmployeeCount int                    `gorm:"not null;default:0"`
	Status        partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'prospect';index"`
	Source        string                 `gorm:"type:varchar(50)"`
	Tags          StringList
	AssignedTo    *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid;index"`
	TotalOrders   int             `gorm:"not null;default:0"`
	TotalRevenue  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LastOrderDate *time.Time
	LastContact   *time.Time
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.AggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Company:           m.Company,
		Address:           m.Address.ToDomain(),
		BusinessType:      m.BusinessType,
		Industry:          m.Industry,
		EmployeeCount:     m.EmployeeCount,
		Status:            m.Status,
		Source:            m.Source,
		Tags:              []string(m.Tags),
		AssignedTo:        m.AssignedTo,
		CreatedBy:         m.CreatedBy,
		TotalOrders:       m.TotalOrders,
		TotalRevenue:      m.TotalRevenue,
		LastOrderDate:     m.LastOrderDate,
		LastContact:       m.LastContact,
		Notes:             []shared.Note{},
		Communications:    []shared.Communication{},
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer entity
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Company:       c.Company,
		Address:       AddressColumnsFromDomain(c.Address),
		BusinessType:  c.BusinessType,
		Industry:      c.Industry,
		EmployeeCount: c.EmployeeCount,
		Status:        c.Status,
		Source:        c.Source,
		Tags:          StringList(c.Tags),
		AssignedTo:    c.AssignedTo,
		CreatedBy:     c.CreatedBy,
		TotalOrders:   c.TotalOrders,
		TotalRevenue:  c.TotalRevenue,
		LastOrderDate: c.LastOrderDate,
		LastContact:   c.LastContact,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
