package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	clients "axiapac.com/backoffice/clients/core"
	"axiapac.com/backoffice/clients/model"
	"axiapac.com/backoffice/core"
	"axiapac.com/backoffice/infrastructure/communication"
	"axiapac.com/backoffice/report"
	web "axiapac.com/backoffice/web/common"
	"axiapac.com/backoffice/web/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Endpoint struct {
	base     web.Handler
	notifier communication.Notifier
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, notifier communication.Notifier, logger *slog.Logger) {
	if notifier == nil {
		notifier = communication.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := &Endpoint{base: web.Handler{Dm: dm, Logger: logger}, notifier: notifier}

	r.GET("/clients", endpoint.ListClients)
	r.POST("/clients", endpoint.CreateClient)
	r.GET("/clients/:id/kardex", endpoint.Kardex)
	r.GET("/clients/:id/kardex/export", endpoint.ExportKardex)
	r.POST("/clients/:id/services", endpoint.CreateContract)

	r.POST("/client-services/:id/payments", endpoint.RegisterPayment)
	r.POST("/client-services/:id/renewals", endpoint.Renew)
	r.POST("/client-services/:id/incidents", endpoint.ReportIncident)

	r.GET("/services", endpoint.ListServices)
	r.POST("/services", endpoint.CreateService)
}

func currentUser(c *gin.Context) *uint {
	if claims, ok := middlewares.Identity(c); ok && claims.Identity.ID != 0 {
		id := claims.Identity.ID
		return &id
	}
	return nil
}

func (ep *Endpoint) ListClients(c *gin.Context) {
	limit, offset := web.Paging(c, 50)

	var list []model.Client
	var total int64
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		list, total, err = clients.ListClients(db, c.Query("q"), limit, offset)
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(list, total, limit, offset))
}

type ClientDTO struct {
	Name       string         `json:"name" binding:"required,max=255"`
	Email      *string        `json:"email" binding:"omitempty,email"`
	Phone      *string        `json:"phone" binding:"omitempty,max=50"`
	TaxID      *string        `json:"tax_id" binding:"omitempty,max=50"`
	Attributes map[string]any `json:"attributes"`
}

func (ep *Endpoint) CreateClient(c *gin.Context) {
	var body ClientDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	client := model.Client{
		Name:       body.Name,
		Email:      body.Email,
		Phone:      body.Phone,
		TaxID:      body.TaxID,
		Attributes: body.Attributes,
	}
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		return clients.CreateClient(db, &client)
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(client))
}

func (ep *Endpoint) Kardex(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var kardex clients.Kardex
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		kardex, err = clients.LoadKardex(db, id)
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(kardex))
}

func (ep *Endpoint) ExportKardex(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var client *model.Client
	var kardex clients.Kardex
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		if kardex, err = clients.LoadKardex(db, id); err != nil {
			return err
		}
		client, err = clients.FindClient(db, id)
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	f, err := report.Kardex(client, kardex)
	if err != nil {
		ep.base.Fail(c, err)
		return
	}
	data, err := report.Bytes(f)
	if err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="kardex-%d.xlsx"`, id))
	c.Data(http.StatusOK, report.ContentType, data)
}

type ContractDTO struct {
	ServiceID    uint               `json:"service_id" binding:"required"`
	StartDate    web.DateOnly       `json:"start_date"`
	EndDate      *web.DateOnly      `json:"end_date"`
	Price        *decimal.Decimal   `json:"price"`
	BillingCycle model.BillingCycle `json:"billing_cycle" binding:"omitempty,oneof=one_time monthly quarterly yearly"`
	Notes        *string            `json:"notes"`
}

func (ep *Endpoint) CreateContract(c *gin.Context) {
	clientID, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var body ContractDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	var contract *model.ClientService
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		contract, err = clients.CreateContract(db, clientID, clients.ContractInput{
			ServiceID:    body.ServiceID,
			StartDate:    body.StartDate.Time,
			EndDate:      body.EndDate.TimePtr(),
			Price:        body.Price,
			BillingCycle: body.BillingCycle,
			Notes:        body.Notes,
		})
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(contract))
}

type PaymentDTO struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   web.DateOnly    `json:"payment_date"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=cash transfer card check other"`
	InvoiceNumber *string         `json:"invoice_number" binding:"omitempty,max=100"`
	Notes         *string         `json:"notes"`
}

func (ep *Endpoint) RegisterPayment(c *gin.Context) {
	contractID, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var body PaymentDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	payment := model.ServicePayment{
		Amount:        body.Amount,
		PaymentDate:   body.PaymentDate.Time,
		PaymentMethod: body.PaymentMethod,
		InvoiceNumber: body.InvoiceNumber,
		ReceivedBy:    currentUser(c),
		Notes:         body.Notes,
	}
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		return clients.RegisterPayment(db, contractID, &payment)
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(payment))
}

type RenewalDTO struct {
	RenewalDate *web.DateOnly `json:"renewal_date"`
	NewEndDate  web.DateOnly  `json:"new_end_date"`
	Notes       *string       `json:"notes"`
}

func (ep *Endpoint) Renew(c *gin.Context) {
	contractID, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var body RenewalDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	in := clients.RenewalInput{
		NewEndDate: body.NewEndDate.Time,
		Notes:      body.Notes,
		RenewedBy:  currentUser(c),
	}
	if t := body.RenewalDate.TimePtr(); t != nil {
		in.RenewalDate = *t
	}

	var renewal *model.ServiceRenewal
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		renewal, err = clients.Renew(db, contractID, in)
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(renewal))
}

type IncidentDTO struct {
	Title        string             `json:"title" binding:"required,max=255"`
	Description  *string            `json:"description"`
	Severity     model.Severity     `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	IncidentDate *web.LocalDateTime `json:"incident_date"`
}

func (ep *Endpoint) ReportIncident(c *gin.Context) {
	contractID, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	var body IncidentDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	incident := model.ServiceIncident{
		Title:       body.Title,
		Description: body.Description,
		Severity:    body.Severity,
		ReportedBy:  currentUser(c),
	}
	if body.IncidentDate != nil {
		incident.IncidentDate = body.IncidentDate.Time
	}

	var contract *model.ClientService
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		contract, err = clients.ReportIncident(db, contractID, &incident)
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	if incident.Severity.Urgent() {
		if err := ep.notifier.Error(clients.IncidentMessage(contract, &incident)); err != nil {
			ep.base.Logger.Warn("failed to notify incident", slog.Uint64("incident_id", uint64(incident.ID)), slog.Any("error", err))
		}
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(incident))
}

func (ep *Endpoint) ListServices(c *gin.Context) {
	var services []model.Service
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		var err error
		services, err = clients.ListServices(db)
		return err
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(services))
}

type ServiceDTO struct {
	Name         string             `json:"name" binding:"required,max=255"`
	Description  *string            `json:"description"`
	Price        decimal.Decimal    `json:"price"`
	BillingCycle model.BillingCycle `json:"billing_cycle" binding:"omitempty,oneof=one_time monthly quarterly yearly"`
}

func (ep *Endpoint) CreateService(c *gin.Context) {
	var body ServiceDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	service := model.Service{
		Name:         body.Name,
		Description:  body.Description,
		Price:        body.Price,
		BillingCycle: body.BillingCycle,
		Active:       true,
	}
	if err := ep.base.Exec(c, func(db *gorm.DB) error {
		return clients.CreateService(db, &service)
	}); err != nil {
		ep.base.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(service))
}
