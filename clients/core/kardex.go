package core

import (
	"fmt"
	"sort"
	"time"

	"axiapac.com/backoffice/clients/model"
	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryServiceCreated EntryType = "service_created"
	EntryPayment        EntryType = "payment"
	EntryRenewal        EntryType = "service_renewal"
	EntryIncident       EntryType = "incident"
)

// Sources are the already loaded rows a kardex is built from. Payments,
// renewals and incidents must belong to the listed contracts.
type Sources struct {
	Contracts []model.ClientService
	Payments  []model.ServicePayment
	Renewals  []model.ServiceRenewal
	Incidents []model.ServiceIncident
}

type PaymentDetail struct {
	Method        string  `json:"payment_method"`
	InvoiceNumber *string `json:"invoice_number"`
	ReceivedBy    *uint   `json:"received_by"`
}

type RenewalDetail struct {
	PreviousEndDate *time.Time `json:"previous_end_date"`
	NewEndDate      time.Time  `json:"new_end_date"`
	Notes           *string    `json:"notes"`
}

type IncidentDetail struct {
	Severity    model.Severity       `json:"severity"`
	Status      model.IncidentStatus `json:"status"`
	Description *string              `json:"description"`
	Resolution  *string              `json:"resolution"`
}

// Entry is one line of the client timeline. Exactly one of the detail
// pointers is set for payment, renewal and incident entries.
type Entry struct {
	Type            EntryType        `json:"type"`
	Date            time.Time        `json:"date"`
	Description     string           `json:"description"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	ClientServiceID uint             `json:"client_service_id"`
	ReferenceID     uint             `json:"reference_id"`
	ServiceName     string           `json:"service_name"`

	Payment  *PaymentDetail  `json:"payment,omitempty"`
	Renewal  *RenewalDetail  `json:"renewal,omitempty"`
	Incident *IncidentDetail `json:"incident,omitempty"`
}

type Summary struct {
	TotalServices  int             `json:"total_services"`
	ActiveServices int             `json:"active_services"`
	TotalPayments  decimal.Decimal `json:"total_payments"`
	TotalRenewals  int             `json:"total_renewals"`
	TotalIncidents int             `json:"total_incidents"`
}

type Kardex struct {
	Entries []Entry `json:"kardex"`
	Summary Summary `json:"summary"`
}

// BuildKardex merges the four sources into one timeline, newest first.
// Entries sharing a timestamp keep the order contracts, renewals, payments,
// incidents. The result is rebuilt from scratch on every call.
func BuildKardex(src Sources) Kardex {
	names := make(map[uint]string, len(src.Contracts))
	for _, c := range src.Contracts {
		names[c.ID] = c.Service.Name
	}

	entries := make([]Entry, 0, len(src.Contracts)+len(src.Payments)+len(src.Renewals)+len(src.Incidents))

	for _, c := range src.Contracts {
		price := c.Price
		entries = append(entries, Entry{
			Type:            EntryServiceCreated,
			Date:            c.StartDate,
			Description:     fmt.Sprintf("Service contracted: %s", c.Service.Name),
			Amount:          &price,
			ClientServiceID: c.ID,
			ReferenceID:     c.ID,
			ServiceName:     c.Service.Name,
		})
	}

	for _, r := range src.Renewals {
		entries = append(entries, Entry{
			Type:            EntryRenewal,
			Date:            r.RenewalDate,
			Description:     fmt.Sprintf("Service renewed until %s", r.NewEndDate.Format("2006-01-02")),
			ClientServiceID: r.ClientServiceID,
			ReferenceID:     r.ID,
			ServiceName:     names[r.ClientServiceID],
			Renewal: &RenewalDetail{
				PreviousEndDate: r.PreviousEndDate,
				NewEndDate:      r.NewEndDate,
				Notes:           r.Notes,
			},
		})
	}

	for _, p := range src.Payments {
		amount := p.Amount
		entries = append(entries, Entry{
			Type:            EntryPayment,
			Date:            p.PaymentDate,
			Description:     fmt.Sprintf("Payment received: %s", p.Amount.StringFixed(2)),
			Amount:          &amount,
			ClientServiceID: p.ClientServiceID,
			ReferenceID:     p.ID,
			ServiceName:     names[p.ClientServiceID],
			Payment: &PaymentDetail{
				Method:        p.PaymentMethod,
				InvoiceNumber: p.InvoiceNumber,
				ReceivedBy:    p.ReceivedBy,
			},
		})
	}

	for _, i := range src.Incidents {
		entries = append(entries, Entry{
			Type:            EntryIncident,
			Date:            i.IncidentDate,
			Description:     fmt.Sprintf("Incident: %s", i.Title),
			ClientServiceID: i.ClientServiceID,
			ReferenceID:     i.ID,
			ServiceName:     names[i.ClientServiceID],
			Incident: &IncidentDetail{
				Severity:    i.Severity,
				Status:      i.Status,
				Description: i.Description,
				Resolution:  i.Resolution,
			},
		})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Date.After(entries[b].Date)
	})

	return Kardex{Entries: entries, Summary: Summarize(src)}
}

// Summarize counts the sources; it does not depend on entry order.
func Summarize(src Sources) Summary {
	summary := Summary{
		TotalServices:  len(src.Contracts),
		TotalPayments:  decimal.Zero,
		TotalRenewals:  len(src.Renewals),
		TotalIncidents: len(src.Incidents),
	}
	for _, c := range src.Contracts {
		if c.Status == model.ContractActive {
			summary.ActiveServices++
		}
	}
	for _, p := range src.Payments {
		summary.TotalPayments = summary.TotalPayments.Add(p.Amount)
	}
	return summary
}
