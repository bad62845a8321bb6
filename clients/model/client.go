package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Client struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Name       string            `gorm:"type:varchar(255);not null" json:"name"`
	Email      *string           `gorm:"type:varchar(255);index" json:"email"`
	Phone      *string           `gorm:"type:varchar(50)" json:"phone"`
	TaxID      *string           `gorm:"type:varchar(50)" json:"tax_id"`
	Attributes datatypes.JSONMap `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	DeletedAt  gorm.DeletedAt    `gorm:"index" json:"-"`

	Services []ClientService `gorm:"foreignKey:ClientID" json:"services,omitempty"`
}

type BillingCycle string

const (
	BillingOneTime   BillingCycle = "one_time"
	BillingMonthly   BillingCycle = "monthly"
	BillingQuarterly BillingCycle = "quarterly"
	BillingYearly    BillingCycle = "yearly"
)

// Service is a catalog item that can be contracted by clients.
type Service struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  *string         `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	BillingCycle BillingCycle    `gorm:"type:varchar(20);not null;default:monthly" json:"billing_cycle"`
	Active       bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractSuspended ContractStatus = "suspended"
	ContractCancelled ContractStatus = "cancelled"
	ContractExpired   ContractStatus = "expired"
)

// ClientService is a client's contract for a catalog service.
type ClientService struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ClientID     uint            `gorm:"not null;index" json:"client_id"`
	ServiceID    uint            `gorm:"not null;index" json:"service_id"`
	StartDate    time.Time       `gorm:"not null" json:"start_date"`
	EndDate      *time.Time      `json:"end_date"`
	Status       ContractStatus  `gorm:"type:varchar(20);not null;default:active" json:"status"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	BillingCycle BillingCycle    `gorm:"type:varchar(20);not null" json:"billing_cycle"`
	Notes        *string         `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Service Service `gorm:"foreignKey:ServiceID" json:"service"`
}

type ServicePayment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ClientServiceID uint            `gorm:"not null;index" json:"client_service_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	PaymentMethod   string          `gorm:"type:varchar(30);not null" json:"payment_method"`
	InvoiceNumber   *string         `gorm:"type:varchar(100)" json:"invoice_number"`
	ReceivedBy      *uint           `json:"received_by"`
	Notes           *string         `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `gorm:"<-:create" json:"created_at"`
}

type ServiceRenewal struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ClientServiceID uint       `gorm:"not null;index" json:"client_service_id"`
	RenewalDate     time.Time  `gorm:"not null" json:"renewal_date"`
	PreviousEndDate *time.Time `json:"previous_end_date"`
	NewEndDate      time.Time  `gorm:"not null" json:"new_end_date"`
	Notes           *string    `gorm:"type:text" json:"notes"`
	RenewedBy       *uint      `json:"renewed_by"`
	CreatedAt       time.Time  `gorm:"<-:create" json:"created_at"`
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Urgent reports whether the incident should page someone.
func (s Severity) Urgent() bool {
	return s == SeverityHigh || s == SeverityCritical
}

type IncidentStatus string

const (
	IncidentOpen       IncidentStatus = "open"
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentResolved   IncidentStatus = "resolved"
	IncidentClosed     IncidentStatus = "closed"
)

type ServiceIncident struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ClientServiceID uint           `gorm:"not null;index" json:"client_service_id"`
	IncidentDate    time.Time      `gorm:"not null" json:"incident_date"`
	Title           string         `gorm:"type:varchar(255);not null" json:"title"`
	Description     *string        `gorm:"type:text" json:"description"`
	Severity        Severity       `gorm:"type:varchar(20);not null;default:low" json:"severity"`
	Status          IncidentStatus `gorm:"type:varchar(20);not null;default:open" json:"status"`
	Resolution      *string        `gorm:"type:text" json:"resolution"`
	ReportedBy      *uint          `json:"reported_by"`
	CreatedAt       time.Time      `gorm:"<-:create" json:"created_at"`
}
