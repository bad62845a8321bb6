package core

import (
	"errors"
	"testing"
	"time"

	"axiapac.com/backoffice/attendance/model"
	"axiapac.com/backoffice/domain"
	"axiapac.com/backoffice/internal/testdb"
	"axiapac.com/backoffice/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFindOrCreateDay(t *testing.T) {
	db := testdb.New(t)

	first, err := FindOrCreateDay(db, 1, "2025-10-13")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, first.Status)

	again, err := FindOrCreateDay(db, 1, "2025-10-13")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	other, err := FindOrCreateDay(db, 2, "2025-10-13")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestMark_AlternatesWhenTypeOmitted(t *testing.T) {
	db := testdb.New(t)

	var last *Day
	for _, hhmm := range []string{"09:00", "12:00", "13:00", "17:00"} {
		ts := at(hhmm)
		d, err := Mark(db, time.UTC, ts, MarkInput{UserID: 5})
		require.NoError(t, err)
		last = d
	}

	require.Len(t, last.Records, 4)
	assert.Equal(t, model.CheckIn, last.Records[0].Type)
	assert.Equal(t, model.CheckOut, last.Records[1].Type)
	assert.Equal(t, model.CheckIn, last.Records[2].Type)
	assert.Equal(t, model.CheckOut, last.Records[3].Type)
	assert.Equal(t, 420, last.TotalMinutes)
	assert.Equal(t, model.StatusCompleted, last.Status)
	assert.Equal(t, model.CheckIn, last.NextMarkType)

	stored, err := LoadDay(db, last.Attendance.ID)
	require.NoError(t, err)
	assert.Equal(t, 420, stored.Attendance.TotalMinutes)
	assert.Equal(t, model.StatusCompleted, stored.Attendance.Status)
}

func TestMark_BackdatedInfersFromPrecedingRecord(t *testing.T) {
	db := testdb.New(t)

	_, err := Mark(db, time.UTC, at("13:00"), MarkInput{UserID: 6, Type: model.CheckIn})
	require.NoError(t, err)

	// entered late, both sit before the 13:00 check-in
	_, err = Mark(db, time.UTC, at("17:00"), MarkInput{UserID: 6, Timestamp: utils.Ptr(at("08:00"))})
	require.NoError(t, err)
	d, err := Mark(db, time.UTC, at("17:05"), MarkInput{UserID: 6, Timestamp: utils.Ptr(at("12:00"))})
	require.NoError(t, err)

	require.Len(t, d.Records, 3)
	assert.Equal(t, model.CheckIn, d.Records[0].Type)
	assert.Equal(t, model.CheckOut, d.Records[1].Type)
	assert.Equal(t, model.CheckIn, d.Records[2].Type)
	assert.Equal(t, 240, d.TotalMinutes)
	assert.Equal(t, model.StatusInProgress, d.Status)
}

func TestPrecedingRecord(t *testing.T) {
	records := []model.AttendanceRecord{
		rec(1, model.CheckIn, "09:00"),
		rec(2, model.CheckOut, "12:00"),
		rec(3, model.CheckIn, "13:00"),
	}

	assert.Nil(t, precedingRecord(records, at("08:00")))
	assert.Nil(t, precedingRecord(nil, at("08:00")))
	assert.Equal(t, uint(1), precedingRecord(records, at("10:00")).ID)
	// a mark sharing a timestamp sorts after the stored record
	assert.Equal(t, uint(2), precedingRecord(records, at("12:00")).ID)
	assert.Equal(t, uint(3), precedingRecord(records, at("18:00")).ID)
}

func TestMark_ExplicitTypeAndLocalDate(t *testing.T) {
	db := testdb.New(t)
	loc := time.FixedZone("UTC-6", -6*60*60)

	// 03:00 UTC is still the previous evening at UTC-6
	ts := time.Date(2025, 10, 14, 3, 0, 0, 0, time.UTC)
	d, err := Mark(db, loc, ts, MarkInput{
		UserID:   9,
		Type:     model.CheckIn,
		Location: utils.Ptr("Warehouse"),
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-10-13", d.Attendance.Date)
	assert.Equal(t, model.StatusInProgress, d.Status)
	require.Len(t, d.Records, 1)
	assert.Equal(t, "Warehouse", *d.Records[0].Location)
	require.Len(t, d.Periods, 1)
	assert.Nil(t, d.Periods[0].CheckOut)
}

func TestMark_Validation(t *testing.T) {
	db := testdb.New(t)

	_, err := Mark(db, time.UTC, at("09:00"), MarkInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Mark(db, time.UTC, at("09:00"), MarkInput{UserID: 1, Type: "lunch"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecompute_IsIdempotentAndSkipsDeleted(t *testing.T) {
	db := testdb.New(t)

	day, err := FindOrCreateDay(db, 3, "2025-10-13")
	require.NoError(t, err)

	for _, r := range []model.AttendanceRecord{
		rec(0, model.CheckIn, "08:00"),
		rec(0, model.CheckOut, "12:00"),
		rec(0, model.CheckIn, "13:00"),
		rec(0, model.CheckOut, "17:00"),
	} {
		r.AttendanceID = day.ID
		require.NoError(t, AppendRecord(db, &r))
	}

	first, err := Recompute(db, day.ID)
	require.NoError(t, err)
	assert.Equal(t, 480, first.TotalMinutes)

	second, err := Recompute(db, day.ID)
	require.NoError(t, err)
	assert.Equal(t, first.TotalMinutes, second.TotalMinutes)
	assert.Equal(t, first.Periods, second.Periods)

	deleted, err := DeleteRecord(db, first.Records[3].ID)
	require.NoError(t, err)
	assert.Equal(t, day.ID, deleted.AttendanceID)

	after, err := Recompute(db, day.ID)
	require.NoError(t, err)
	assert.Len(t, after.Records, 3)
	assert.Equal(t, 240, after.TotalMinutes)
	assert.Equal(t, model.StatusInProgress, after.Attendance.Status)
}

func TestFindDay(t *testing.T) {
	db := testdb.New(t)

	missing, err := FindDay(db, 3, "2025-10-13")
	require.NoError(t, err)
	assert.Zero(t, missing.Attendance.ID)
	assert.Equal(t, model.StatusPending, missing.Status)
	assert.Equal(t, model.CheckIn, missing.NextMarkType)
	assert.Empty(t, missing.Records)

	var count int64
	require.NoError(t, db.Model(&model.Attendance{}).Count(&count).Error)
	assert.Zero(t, count)

	marked, err := Mark(db, time.UTC, at("09:00"), MarkInput{UserID: 3})
	require.NoError(t, err)

	found, err := FindDay(db, 3, "2025-10-13")
	require.NoError(t, err)
	assert.Equal(t, marked.Attendance.ID, found.Attendance.ID)
	assert.Len(t, found.Records, 1)
}

func TestAppendRecord_RejectsUnknownType(t *testing.T) {
	db := testdb.New(t)

	err := AppendRecord(db, &model.AttendanceRecord{AttendanceID: 1, Type: "break", Timestamp: at("10:00")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteRecord_NotFound(t *testing.T) {
	db := testdb.New(t)

	_, err := DeleteRecord(db, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = Recompute(db, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecomputeDate(t *testing.T) {
	db := testdb.New(t)

	for _, userID := range []uint{1, 2} {
		_, err := Mark(db, time.UTC, at("09:00"), MarkInput{UserID: userID})
		require.NoError(t, err)
		_, err = Mark(db, time.UTC, at("10:30"), MarkInput{UserID: userID})
		require.NoError(t, err)
	}
	// drift the stored totals, then replay
	require.NoError(t, db.Model(&model.Attendance{}).Where("1 = 1").Update("total_minutes", 0).Error)

	n, err := RecomputeDate(db, "2025-10-13")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	days, total, err := ListDays(db, DayFilter{From: "2025-10-01", To: "2025-10-31"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, d := range days {
		assert.Equal(t, 90, d.TotalMinutes)
	}
}

func TestListDays_Filters(t *testing.T) {
	db := testdb.New(t)

	for _, date := range []string{"2025-10-10", "2025-10-11", "2025-10-12"} {
		_, err := FindOrCreateDay(db, 1, date)
		require.NoError(t, err)
	}
	_, err := FindOrCreateDay(db, 2, "2025-10-11")
	require.NoError(t, err)

	days, total, err := ListDays(db, DayFilter{UserID: utils.Ptr(uint(1)), From: "2025-10-11", Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-10-12", days[0].Date)
}

func TestRecomputeDate_RollsBackOnError(t *testing.T) {
	db := testdb.New(t)

	var ids []uint
	for _, userID := range []uint{1, 2} {
		day := model.Attendance{UserID: userID, Date: "2025-10-13", Status: model.StatusPending}
		require.NoError(t, db.Create(&day).Error)
		require.NoError(t, db.Create(&[]model.AttendanceRecord{
			{AttendanceID: day.ID, Type: model.CheckIn, Timestamp: at("09:00")},
			{AttendanceID: day.ID, Type: model.CheckOut, Timestamp: at("10:00")},
		}).Error)
		ids = append(ids, day.ID)
	}

	// the second update fails after the first day was rewritten
	updates := 0
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_second", func(tx *gorm.DB) {
		updates++
		if updates == 2 {
			tx.AddError(errors.New("disk full"))
		}
	}))

	n, err := RecomputeDate(db, "2025-10-13")
	require.ErrorContains(t, err, "disk full")
	assert.Zero(t, n)

	var days []model.Attendance
	require.NoError(t, db.Where("id IN ?", ids).Find(&days).Error)
	for _, d := range days {
		assert.Zero(t, d.TotalMinutes)
		assert.Equal(t, model.StatusPending, d.Status)
	}
}
