package core

import (
	"sort"
	"time"

	"axiapac.com/backoffice/attendance/model"
)

// DaySummary is everything the UI needs for one day.
type DaySummary struct {
	TotalMinutes int            `json:"total_minutes"`
	Periods      []model.Period `json:"periods"`
	NextMarkType model.MarkType `json:"next_mark_type"`
	Status       model.Status   `json:"status"`
}

// SortRecords returns a copy ordered by timestamp, then id.
func SortRecords(records []model.AttendanceRecord) []model.AttendanceRecord {
	sorted := make([]model.AttendanceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}

// scan walks the records in order, calling closed for every finished pair,
// and returns the check-in still open at the end, if any.
func scan(records []model.AttendanceRecord, closed func(in, out model.AttendanceRecord)) *model.AttendanceRecord {
	var open *model.AttendanceRecord
	for _, r := range SortRecords(records) {
		r := r
		switch r.Type {
		case model.CheckIn:
			if open != nil {
				closed(*open, r)
			}
			open = &r
		case model.CheckOut:
			if open == nil {
				// orphan check-out
				continue
			}
			closed(*open, r)
			open = nil
		}
	}
	return open
}

// ComputeTotalMinutes sums the closed periods of a day. An open check-in at
// the end contributes nothing and an orphan check-out is ignored.
func ComputeTotalMinutes(records []model.AttendanceRecord) int {
	total := 0
	scan(records, func(in, out model.AttendanceRecord) {
		total += minutesBetween(in.Timestamp, out.Timestamp)
	})
	return total
}

// BuildPeriods returns the closed periods in closing order, followed by the
// open period if the day ends checked in.
func BuildPeriods(records []model.AttendanceRecord) []model.Period {
	periods := []model.Period{}
	open := scan(records, func(in, out model.AttendanceRecord) {
		checkOut := out.Timestamp
		duration := minutesBetween(in.Timestamp, out.Timestamp)
		p := model.Period{
			CheckIn:         in.Timestamp,
			CheckOut:        &checkOut,
			DurationMinutes: &duration,
			CheckInID:       in.ID,
			AutoClosed:      out.Type == model.CheckIn,
		}
		if out.Type == model.CheckOut {
			p.CheckOutID = out.ID
		}
		periods = append(periods, p)
	})
	if open != nil {
		periods = append(periods, model.Period{CheckIn: open.Timestamp, CheckInID: open.ID})
	}
	return periods
}

// NextExpectedMarkType is a UI hint only; alternation is not enforced.
func NextExpectedMarkType(last *model.AttendanceRecord) model.MarkType {
	if last == nil {
		return model.CheckIn
	}
	return last.Type.Opposite()
}

// Summarize computes totals, periods, the next mark hint and the day status.
func Summarize(records []model.AttendanceRecord) DaySummary {
	sorted := SortRecords(records)

	var last *model.AttendanceRecord
	if len(sorted) > 0 {
		last = &sorted[len(sorted)-1]
	}

	status := model.StatusPending
	if last != nil {
		status = model.StatusCompleted
		if last.Type == model.CheckIn {
			status = model.StatusInProgress
		}
	}

	return DaySummary{
		TotalMinutes: ComputeTotalMinutes(sorted),
		Periods:      BuildPeriods(sorted),
		NextMarkType: NextExpectedMarkType(last),
		Status:       status,
	}
}
