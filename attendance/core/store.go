package core

import (
	"errors"
	"fmt"
	"time"

	"axiapac.com/backoffice/attendance/model"
	"axiapac.com/backoffice/domain"
	"axiapac.com/backoffice/utils"
	"gorm.io/gorm"
)

// Day is a stored attendance day with its live records and derived view.
type Day struct {
	Attendance model.Attendance         `json:"attendance"`
	Records    []model.AttendanceRecord `json:"records"`
	DaySummary
}

func FindOrCreateDay(db *gorm.DB, userID uint, date string) (*model.Attendance, error) {
	var day model.Attendance
	err := db.Where(model.Attendance{UserID: userID, Date: date}).
		Attrs(model.Attendance{Status: model.StatusPending}).
		FirstOrCreate(&day).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create attendance for user %d on %s: %w", userID, date, err)
	}
	return &day, nil
}

// ListRecords returns the live records of a day ordered by timestamp, then id.
func ListRecords(db *gorm.DB, attendanceID uint) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	if err := db.Where("attendance_id = ?", attendanceID).
		Order("timestamp ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch attendance records: %w", err)
	}
	return records, nil
}

func AppendRecord(db *gorm.DB, record *model.AttendanceRecord) error {
	if !record.Type.Valid() {
		return domain.NewValidationError("type", fmt.Sprintf("unknown mark type %q", record.Type))
	}
	if record.Timestamp.IsZero() {
		return domain.NewValidationError("timestamp", "is required")
	}
	if err := db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to append attendance record: %w", err)
	}
	return nil
}

// DeleteRecord soft deletes a record and returns it so the caller can
// recompute its day.
func DeleteRecord(db *gorm.DB, recordID uint) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	if err := db.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("attendance record", recordID)
		}
		return nil, err
	}
	if err := db.Delete(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to delete attendance record %d: %w", recordID, err)
	}
	return &record, nil
}

func findDay(db *gorm.DB, attendanceID uint) (*model.Attendance, error) {
	var day model.Attendance
	if err := db.First(&day, attendanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("attendance", attendanceID)
		}
		return nil, err
	}
	return &day, nil
}

// Recompute replays the records of a day and stores the derived total and
// status. Running it twice leaves the row unchanged.
func Recompute(db *gorm.DB, attendanceID uint) (*Day, error) {
	day, err := findDay(db, attendanceID)
	if err != nil {
		return nil, err
	}

	records, err := ListRecords(db, day.ID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(records)

	if err := db.Model(day).
		Select("total_minutes", "status").
		Updates(model.Attendance{TotalMinutes: summary.TotalMinutes, Status: summary.Status}).Error; err != nil {
		return nil, fmt.Errorf("failed to update attendance %d: %w", day.ID, err)
	}
	day.TotalMinutes = summary.TotalMinutes
	day.Status = summary.Status

	return &Day{Attendance: *day, Records: records, DaySummary: summary}, nil
}

// FindDay reads the day of a user on date. A day that was never punched is
// returned unsaved and pending, with an empty summary.
func FindDay(db *gorm.DB, userID uint, date string) (*Day, error) {
	var day model.Attendance
	err := db.Where("user_id = ? AND date = ?", userID, date).First(&day).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Day{
			Attendance: model.Attendance{UserID: userID, Date: date, Status: model.StatusPending},
			Records:    []model.AttendanceRecord{},
			DaySummary: Summarize(nil),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find attendance for user %d on %s: %w", userID, date, err)
	}
	return LoadDay(db, day.ID)
}

// LoadDay reads a day without writing anything back.
func LoadDay(db *gorm.DB, attendanceID uint) (*Day, error) {
	day, err := findDay(db, attendanceID)
	if err != nil {
		return nil, err
	}
	records, err := ListRecords(db, day.ID)
	if err != nil {
		return nil, err
	}
	return &Day{Attendance: *day, Records: records, DaySummary: Summarize(records)}, nil
}

// RecomputeDate replays every attendance day on date in one transaction and
// returns how many were processed. On error nothing is written.
func RecomputeDate(db *gorm.DB, date string) (int, error) {
	var n int
	err := db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&model.Attendance{}).Where("date = ?", date).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to list attendances on %s: %w", date, err)
		}
		for _, id := range ids {
			if _, err := Recompute(tx, id); err != nil {
				return err
			}
		}
		n = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

type DayFilter struct {
	UserID *uint
	From   string
	To     string
	Limit  int
	Offset int
}

func ListDays(db *gorm.DB, filter DayFilter) ([]model.Attendance, int64, error) {
	query := db.Model(&model.Attendance{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.From != "" {
		query = query.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("date <= ?", filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var days []model.Attendance
	if err := query.Order("date DESC, user_id ASC").Find(&days).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	return days, total, nil
}

// precedingRecord returns the record right before a new mark at ts on the
// (timestamp, id) timeline. records must already be in that order; the new
// mark sorts after records sharing its timestamp.
func precedingRecord(records []model.AttendanceRecord, ts time.Time) *model.AttendanceRecord {
	var prev *model.AttendanceRecord
	for i := range records {
		if records[i].Timestamp.After(ts) {
			break
		}
		prev = &records[i]
	}
	return prev
}

type MarkInput struct {
	UserID uint
	// Type defaults to the next expected mark when empty.
	Type      model.MarkType
	Timestamp *time.Time
	Location  *string
	Notes     *string
}

// Mark records one punch. The day is the punch's calendar date in loc.
func Mark(db *gorm.DB, loc *time.Location, now time.Time, in MarkInput) (*Day, error) {
	if in.UserID == 0 {
		return nil, domain.NewValidationError("user_id", "is required")
	}
	if in.Type != "" && !in.Type.Valid() {
		return nil, domain.NewValidationError("type", fmt.Sprintf("unknown mark type %q", in.Type))
	}

	ts := now
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}

	var result *Day
	err := db.Transaction(func(tx *gorm.DB) error {
		day, err := FindOrCreateDay(tx, in.UserID, utils.LocalDate(ts, loc))
		if err != nil {
			return err
		}

		markType := in.Type
		if markType == "" {
			records, err := ListRecords(tx, day.ID)
			if err != nil {
				return err
			}
			markType = NextExpectedMarkType(precedingRecord(records, ts))
		}

		record := &model.AttendanceRecord{
			AttendanceID: day.ID,
			Type:         markType,
			Timestamp:    ts.UTC(),
			Location:     in.Location,
			Notes:        in.Notes,
		}
		if err := AppendRecord(tx, record); err != nil {
			return err
		}

		result, err = Recompute(tx, day.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
