// Package report renders attendance and kardex data as xlsx workbooks.
package report

import (
	"bytes"
	"fmt"
	"time"

	attendance "axiapac.com/backoffice/attendance/core"
	clients "axiapac.com/backoffice/clients/core"
	"axiapac.com/backoffice/clients/model"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	timeLayout = "15:04"
)

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(timeLayout)
}

// Attendance renders one sheet per month with a row per user-day. Times are
// shown in loc.
func Attendance(month string, rows []attendance.ReportRow, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	sheet := month
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, err
	}

	header := []any{"Date", "User", "Status", "First in", "Last out", "Marks", "Minutes", "Hours"}
	data := [][]any{header}
	totalMinutes := 0
	for _, r := range rows {
		data = append(data, []any{
			r.Date,
			r.UserID,
			string(r.Status),
			clock(r.FirstIn, loc),
			clock(r.LastOut, loc),
			r.Marks,
			r.TotalMinutes,
			float64(r.TotalMinutes) / 60,
		})
		totalMinutes += r.TotalMinutes
	}
	data = append(data, []any{"Total", "", "", "", "", "", totalMinutes, float64(totalMinutes) / 60})

	if err := writeRows(f, sheet, data); err != nil {
		f.Close()
		return nil, err
	}
	if err := styleHeader(f, sheet, len(header)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Kardex renders a client's timeline followed by its summary.
func Kardex(client *model.Client, k clients.Kardex) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Kardex"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, err
	}

	header := []any{"Date", "Type", "Service", "Description", "Amount", "Reference"}
	data := [][]any{header}
	for _, e := range k.Entries {
		amount := ""
		if e.Amount != nil {
			amount = e.Amount.StringFixed(2)
		}
		data = append(data, []any{
			e.Date.Format("2006-01-02 15:04"),
			string(e.Type),
			e.ServiceName,
			e.Description,
			amount,
			e.ReferenceID,
		})
	}
	if err := writeRows(f, sheet, data); err != nil {
		f.Close()
		return nil, err
	}
	if err := styleHeader(f, sheet, len(header)); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet("Summary"); err != nil {
		f.Close()
		return nil, err
	}
	summary := [][]any{
		{"Client", client.Name},
		{"Services", k.Summary.TotalServices},
		{"Active services", k.Summary.ActiveServices},
		{"Payments", k.Summary.TotalPayments.StringFixed(2)},
		{"Renewals", k.Summary.TotalRenewals},
		{"Incidents", k.Summary.TotalIncidents},
	}
	if err := writeRows(f, "Summary", summary); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Bytes serializes and closes the workbook.
func Bytes(f *excelize.File) ([]byte, error) {
	defer f.Close()
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
