package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"axiapac.com/backoffice/clients/model"
	"axiapac.com/backoffice/domain"
	"axiapac.com/backoffice/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func FindClient(db *gorm.DB, clientID uint) (*model.Client, error) {
	var client model.Client
	if err := db.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("client", clientID)
		}
		return nil, err
	}
	return &client, nil
}

// ListClients pages through clients, optionally matching name, email or tax id.
func ListClients(db *gorm.DB, search string, limit, offset int) ([]model.Client, int64, error) {
	query := db.Model(&model.Client{})
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR tax_id LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var clients []model.Client
	if err := query.Order("name ASC, id ASC").Find(&clients).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

func CreateClient(db *gorm.DB, client *model.Client) error {
	if strings.TrimSpace(client.Name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	if err := db.Create(client).Error; err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func ListServices(db *gorm.DB) ([]model.Service, error) {
	var services []model.Service
	if err := db.Order("name ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func CreateService(db *gorm.DB, service *model.Service) error {
	if strings.TrimSpace(service.Name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	if service.Price.IsNegative() {
		return domain.NewValidationError("price", "must not be negative")
	}
	if service.BillingCycle == "" {
		service.BillingCycle = model.BillingMonthly
	}
	if err := db.Create(service).Error; err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func findService(db *gorm.DB, serviceID uint) (*model.Service, error) {
	var service model.Service
	if err := db.First(&service, serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("service", serviceID)
		}
		return nil, err
	}
	return &service, nil
}

func FindContract(db *gorm.DB, contractID uint) (*model.ClientService, error) {
	var contract model.ClientService
	if err := db.Preload("Service").First(&contract, contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("client service", contractID)
		}
		return nil, err
	}
	return &contract, nil
}

type ContractInput struct {
	ServiceID uint
	StartDate time.Time
	EndDate   *time.Time
	// Price and BillingCycle default to the catalog values.
	Price        *decimal.Decimal
	BillingCycle model.BillingCycle
	Notes        *string
}

func CreateContract(db *gorm.DB, clientID uint, in ContractInput) (*model.ClientService, error) {
	if in.StartDate.IsZero() {
		return nil, domain.NewValidationError("start_date", "is required")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, domain.NewValidationError("end_date", "must not be before start_date")
	}
	if _, err := FindClient(db, clientID); err != nil {
		return nil, err
	}
	service, err := findService(db, in.ServiceID)
	if err != nil {
		return nil, err
	}

	contract := model.ClientService{
		ClientID:     clientID,
		ServiceID:    service.ID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       model.ContractActive,
		Price:        service.Price,
		BillingCycle: service.BillingCycle,
		Notes:        in.Notes,
	}
	if in.Price != nil {
		contract.Price = *in.Price
	}
	if in.BillingCycle != "" {
		contract.BillingCycle = in.BillingCycle
	}

	if err := db.Omit("Service").Create(&contract).Error; err != nil {
		return nil, fmt.Errorf("failed to create client service: %w", err)
	}
	contract.Service = *service
	return &contract, nil
}

func RegisterPayment(db *gorm.DB, contractID uint, payment *model.ServicePayment) error {
	if !payment.Amount.IsPositive() {
		return domain.NewValidationError("amount", "must be greater than zero")
	}
	if payment.PaymentDate.IsZero() {
		return domain.NewValidationError("payment_date", "is required")
	}
	if _, err := FindContract(db, contractID); err != nil {
		return err
	}

	payment.ClientServiceID = contractID
	if err := db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to register payment: %w", err)
	}
	return nil
}

type RenewalInput struct {
	RenewalDate time.Time
	NewEndDate  time.Time
	Notes       *string
	RenewedBy   *uint
}

// Renew stores the renewal and moves the contract end date in one
// transaction. A renewed contract is active again.
func Renew(db *gorm.DB, contractID uint, in RenewalInput) (*model.ServiceRenewal, error) {
	if in.NewEndDate.IsZero() {
		return nil, domain.NewValidationError("new_end_date", "is required")
	}

	var renewal *model.ServiceRenewal
	err := db.Transaction(func(tx *gorm.DB) error {
		contract, err := FindContract(tx, contractID)
		if err != nil {
			return err
		}
		if contract.EndDate != nil && !in.NewEndDate.After(*contract.EndDate) {
			return domain.NewValidationError("new_end_date", "must be after the current end date")
		}

		renewalDate := in.RenewalDate
		if renewalDate.IsZero() {
			renewalDate = time.Now().UTC()
		}

		renewal = &model.ServiceRenewal{
			ClientServiceID: contract.ID,
			RenewalDate:     renewalDate,
			PreviousEndDate: contract.EndDate,
			NewEndDate:      in.NewEndDate,
			Notes:           in.Notes,
			RenewedBy:       in.RenewedBy,
		}
		if err := tx.Create(renewal).Error; err != nil {
			return fmt.Errorf("failed to create renewal: %w", err)
		}

		return tx.Model(&model.ClientService{}).
			Where("id = ?", contract.ID).
			Updates(map[string]any{"end_date": in.NewEndDate, "status": model.ContractActive}).Error
	})
	if err != nil {
		return nil, err
	}
	return renewal, nil
}

// ReportIncident stores the incident and returns its contract.
func ReportIncident(db *gorm.DB, contractID uint, incident *model.ServiceIncident) (*model.ClientService, error) {
	if strings.TrimSpace(incident.Title) == "" {
		return nil, domain.NewValidationError("title", "is required")
	}
	if incident.Severity == "" {
		incident.Severity = model.SeverityLow
	}
	if !incident.Severity.Valid() {
		return nil, domain.NewValidationError("severity", fmt.Sprintf("unknown severity %q", incident.Severity))
	}
	if incident.Status == "" {
		incident.Status = model.IncidentOpen
	}
	if incident.IncidentDate.IsZero() {
		incident.IncidentDate = time.Now().UTC()
	}

	contract, err := FindContract(db, contractID)
	if err != nil {
		return nil, err
	}

	incident.ClientServiceID = contractID
	if err := db.Create(incident).Error; err != nil {
		return nil, fmt.Errorf("failed to report incident: %w", err)
	}
	return contract, nil
}

// IncidentMessage formats an incident for the operations channel.
func IncidentMessage(contract *model.ClientService, incident *model.ServiceIncident) string {
	return fmt.Sprintf("[%s] incident on %s (client %d, contract %d): %s",
		strings.ToUpper(string(incident.Severity)), contract.Service.Name, contract.ClientID, contract.ID, incident.Title)
}

// LoadKardexSources fetches everything a client's kardex is built from. A
// missing client is reported before anything else is read.
func LoadKardexSources(db *gorm.DB, clientID uint) (Sources, error) {
	var src Sources
	if _, err := FindClient(db, clientID); err != nil {
		return src, err
	}

	if err := db.Preload("Service").
		Where("client_id = ?", clientID).
		Order("id ASC").
		Find(&src.Contracts).Error; err != nil {
		return src, fmt.Errorf("failed to fetch client services: %w", err)
	}
	if len(src.Contracts) == 0 {
		return src, nil
	}

	ids := utils.Map(src.Contracts, func(c model.ClientService) uint { return c.ID })

	if err := db.Where("client_service_id IN ?", ids).Order("id ASC").Find(&src.Payments).Error; err != nil {
		return src, fmt.Errorf("failed to fetch payments: %w", err)
	}
	if err := db.Where("client_service_id IN ?", ids).Order("id ASC").Find(&src.Renewals).Error; err != nil {
		return src, fmt.Errorf("failed to fetch renewals: %w", err)
	}
	if err := db.Where("client_service_id IN ?", ids).Order("id ASC").Find(&src.Incidents).Error; err != nil {
		return src, fmt.Errorf("failed to fetch incidents: %w", err)
	}
	return src, nil
}

func LoadKardex(db *gorm.DB, clientID uint) (Kardex, error) {
	src, err := LoadKardexSources(db, clientID)
	if err != nil {
		return Kardex{}, err
	}
	return BuildKardex(src), nil
}
