package core

import (
	"fmt"
	"sort"
	"time"

	"axiapac.com/backoffice/attendance/model"
	"axiapac.com/backoffice/utils"
	"gorm.io/gorm"
)

// ReportRow is one user-day of a monthly attendance report.
type ReportRow struct {
	Date         string
	UserID       uint
	Status       model.Status
	TotalMinutes int
	FirstIn      *time.Time
	LastOut      *time.Time
	Marks        int
	OpenPeriod   bool
}

// MonthReport builds report rows for a "yyyy-MM" month from the live
// records, so totals are correct even if a stored total has drifted.
func MonthReport(db *gorm.DB, month string) ([]ReportRow, error) {
	start, end, err := utils.MonthRange(month)
	if err != nil {
		return nil, err
	}

	days, _, err := ListDays(db, DayFilter{From: start.Format(utils.DateLayout), To: end.Format(utils.DateLayout)})
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return []ReportRow{}, nil
	}

	ids := utils.Map(days, func(d model.Attendance) uint { return d.ID })
	var records []model.AttendanceRecord
	if err := db.Where("attendance_id IN ?", ids).Order("timestamp ASC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch attendance records: %w", err)
	}
	byDay := utils.GroupBy(records, func(r model.AttendanceRecord) uint { return r.AttendanceID })

	rows := make([]ReportRow, 0, len(days))
	for _, d := range days {
		dayRecords := byDay[d.ID]
		summary := Summarize(dayRecords)

		row := ReportRow{
			Date:         d.Date,
			UserID:       d.UserID,
			Status:       summary.Status,
			TotalMinutes: summary.TotalMinutes,
			Marks:        len(dayRecords),
		}
		if first := utils.Find(dayRecords, func(r model.AttendanceRecord) bool { return r.Type == model.CheckIn }); first != nil {
			row.FirstIn = &first.Timestamp
		}
		for j := len(dayRecords) - 1; j >= 0; j-- {
			if dayRecords[j].Type == model.CheckOut {
				row.LastOut = &dayRecords[j].Timestamp
				break
			}
		}
		if n := len(summary.Periods); n > 0 && summary.Periods[n-1].CheckOut == nil {
			row.OpenPeriod = true
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date == rows[j].Date {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].Date < rows[j].Date
	})
	return rows, nil
}
