package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/shared"
)

// InquiryModel is the persistence model for the Inquiry aggregate root
type InquiryModel struct {
	AggregateModel
	InquiryNumber       string              `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerName        string              `gorm:"type:varchar(100);not null"`
	Email               string              `gorm:"type:varchar(200);not null;index"`
	Phone               string              `gorm:"type:varchar(30)"`
	Company             string              `gorm:"type:varchar(200)"`
	BusinessType        shared.BusinessType `gorm:"type:varchar(20);not null;default:'other';index"`
	Industry            string              `gorm:"type:varchar(100)"`
	EmployeeCount       int                 `gorm:"not null;default:0"`
	Address             AddressColumns      `gorm:"embedded;embeddedPrefix:address_"`
	UniformType         string              `gorm:"type:varchar(30)"`
	Quantity            int                 `gorm:"not null;default:0"`
	RequirementsText    string              `gorm:"column:requirements_description;type:text"`
	BudgetMin           *decimal.Decimal    `gorm:"type:decimal(18,2)"`
	BudgetMax           *decimal.Decimal    `gorm:"type:decimal(18,2)"`
	Timeline            string              `gorm:"type:varchar(100)"`
	Customization       string              `gorm:"type:text"`
	Source              sales.Source        `gorm:"type:varchar(20);not null;default:'website';index"`
	Campaign            string              `gorm:"type:varchar(100)"`
	Referrer            string              `gorm:"type:varchar(500)"`
	LandingPage         string              `gorm:"type:varchar(500)"`
	Status              sales.InquiryStatus `gorm:"type:varchar(20);not null;default:'new';index"`
	Priority            sales.Priority      `gorm:"type:varchar(20);not null;default:'medium';index"`
	AssignedTo          *uuid.UUID          `gorm:"type:uuid;index"`
	AssignedDate        *time.Time
	NextFollowUp        *time.Time `gorm:"index"`
	FollowUpNotes       string     `gorm:"type:text"`
	LastContact         *time.Time
	FirstResponseTime   *time.Time
	ResolutionTime      *time.Time
	ConvertedCustomerID *uuid.UUID `gorm:"type:uuid;index"`
	ConvertedOrderID    *uuid.UUID `gorm:"type:uuid"`
	ConversionDate      *time.Time
	ConversionValue     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (InquiryModel) TableName() string {
	return "inquiries"
}

// ToDomain converts the persistence model to a domain Inquiry
func (m *InquiryModel) ToDomain() *sales.Inquiry {
	return &sales.Inquiry{
		BaseAggregateRoot: m.AggregateRoot(),
		InquiryNumber:     m.InquiryNumber,
		CustomerName:      m.CustomerName,
		Email:             m.Email,
		Phone:             m.Phone,
		Company:           m.Company,
		BusinessType:      m.BusinessType,
		Industry:          m.Industry,
		EmployeeCount:     m.EmployeeCount,
		Address:           m.Address.ToDomain(),
		UniformType:       m.UniformType,
		Quantity:          m.Quantity,
		Requirements: sales.Requirements{
			Description:   m.RequirementsText,
			BudgetMin:     m.BudgetMin,
			BudgetMax:     m.BudgetMax,
			Timeline:      m.Timeline,
			Customization: m.Customization,
		},
		Source: m.Source,
		Attribution: sales.Attribution{
			Campaign:    m.Campaign,
			Referrer:    m.Referrer,
			LandingPage: m.LandingPage,
		},
		Status:            m.Status,
		Priority:          m.Priority,
		Notes:             []shared.Note{},
		Communications:    []shared.Communication{},
		AssignedTo:        m.AssignedTo,
		AssignedDate:      m.AssignedDate,
		NextFollowUp:      m.NextFollowUp,
		FollowUpNotes:     m.FollowUpNotes,
		LastContact:       m.LastContact,
		FirstResponseTime: m.FirstResponseTime,
		ResolutionTime:    m.ResolutionTime,
		ConvertedTo: sales.Conversion{
			CustomerID:      m.ConvertedCustomerID,
			OrderID:         m.ConvertedOrderID,
			ConversionDate:  m.ConversionDate,
			ConversionValue: m.ConversionValue,
		},
	}
}

// InquiryModelFromDomain creates a persistence model from a domain Inquiry
func InquiryModelFromDomain(i *sales.Inquiry) *InquiryModel {
	m := &InquiryModel{
		InquiryNumber:       i.InquiryNumber,
		CustomerName:        i.CustomerName,
		Email:               i.Email,
		Phone:               i.Phone,
		Company:             i.Company,
		BusinessType:        i.BusinessType,
		Industry:            i.Industry,
		EmployeeCount:       i.EmployeeCount,
		Address:             AddressColumnsFromDomain(i.Address),
		UniformType:         i.UniformType,
		Quantity:            i.Quantity,
		RequirementsText:    i.Requirements.Description,
		BudgetMin:           i.Requirements.BudgetMin,
		BudgetMax:           i.Requirements.BudgetMax,
		Timeline:            i.Requirements.Timeline,
		Customization:       i.Requirements.Customization,
		Source:              i.Source,
		Campaign:            i.Attribution.Campaign,
		Referrer:            i.Attribution.Referrer,
		LandingPage:         i.Attribution.LandingPage,
		Status:              i.Status,
		Priority:            i.Priority,
		AssignedTo:          i.AssignedTo,
		AssignedDate:        i.AssignedDate,
		NextFollowUp:        i.NextFollowUp,
		FollowUpNotes:       i.FollowUpNotes,
		LastContact:         i.LastContact,
		FirstResponseTime:   i.FirstResponseTime,
		ResolutionTime:      i.ResolutionTime,
		ConvertedCustomerID: i.ConvertedTo.CustomerID,
		ConvertedOrderID:    i.ConvertedTo.OrderID,
		ConversionDate:      i.ConvertedTo.ConversionDate,
		ConversionValue:     i.ConvertedTo.ConversionValue,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}
