package core

import (
	"testing"
	"time"

	"axiapac.com/backoffice/attendance/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)

func at(hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

func rec(id uint, typ model.MarkType, hhmm string) model.AttendanceRecord {
	return model.AttendanceRecord{ID: id, Type: typ, Timestamp: at(hhmm)}
}

func TestComputeTotalMinutes(t *testing.T) {
	tests := []struct {
		name     string
		records  []model.AttendanceRecord
		expected int
	}{
		{
			name:     "No records",
			records:  nil,
			expected: 0,
		},
		{
			name:     "Single check in",
			records:  []model.AttendanceRecord{rec(1, model.CheckIn, "09:00")},
			expected: 0,
		},
		{
			name: "One closed period",
			records: []model.AttendanceRecord{
				rec(1, model.CheckIn, "09:00"),
				rec(2, model.CheckOut, "17:00"),
			},
			expected: 480,
		},
		{
			name: "Consecutive check ins close the earlier one",
			records: []model.AttendanceRecord{
				rec(1, model.CheckIn, "09:00"),
				rec(2, model.CheckIn, "09:30"),
				rec(3, model.CheckOut, "10:00"),
			},
			expected: 60,
		},
		{
			name:     "Orphan check out",
			records:  []model.AttendanceRecord{rec(1, model.CheckOut, "10:00")},
			expected: 0,
		},
		{
			name: "Two periods with a break",
			records: []model.AttendanceRecord{
				rec(1, model.CheckIn, "08:00"),
				rec(2, model.CheckOut, "12:00"),
				rec(3, model.CheckIn, "13:00"),
				rec(4, model.CheckOut, "17:00"),
			},
			expected: 480,
		},
		{
			name: "Trailing open check in adds nothing",
			records: []model.AttendanceRecord{
				rec(1, model.CheckIn, "08:00"),
				rec(2, model.CheckOut, "12:00"),
				rec(3, model.CheckIn, "13:00"),
			},
			expected: 240,
		},
		{
			name: "Double check out",
			records: []model.AttendanceRecord{
				rec(1, model.CheckIn, "08:00"),
				rec(2, model.CheckOut, "09:00"),
				rec(3, model.CheckOut, "10:00"),
			},
			expected: 60,
		},
		{
			name: "Partial minutes truncate",
			records: []model.AttendanceRecord{
				{ID: 1, Type: model.CheckIn, Timestamp: at("09:00")},
				{ID: 2, Type: model.CheckOut, Timestamp: at("09:01").Add(59 * time.Second)},
			},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeTotalMinutes(tt.records))
		})
	}
}

func TestComputeTotalMinutesSortsInput(t *testing.T) {
	sorted := []model.AttendanceRecord{
		rec(1, model.CheckIn, "08:00"),
		rec(2, model.CheckOut, "12:00"),
		rec(3, model.CheckIn, "13:00"),
		rec(4, model.CheckOut, "17:30"),
	}
	shuffled := []model.AttendanceRecord{sorted[3], sorted[1], sorted[0], sorted[2]}

	assert.Equal(t, ComputeTotalMinutes(sorted), ComputeTotalMinutes(shuffled))
	assert.Equal(t, BuildPeriods(sorted), BuildPeriods(shuffled))
	// input untouched
	assert.Equal(t, uint(4), shuffled[0].ID)
}

func TestSortRecordsTieBreaksOnID(t *testing.T) {
	records := []model.AttendanceRecord{
		rec(7, model.CheckOut, "09:00"),
		rec(3, model.CheckIn, "09:00"),
	}

	sorted := SortRecords(records)

	require.Len(t, sorted, 2)
	assert.Equal(t, uint(3), sorted[0].ID)
	assert.Equal(t, uint(7), sorted[1].ID)
}

func TestBuildPeriods(t *testing.T) {
	t.Run("Empty day", func(t *testing.T) {
		periods := BuildPeriods(nil)
		assert.NotNil(t, periods)
		assert.Empty(t, periods)
	})

	t.Run("Closed then open", func(t *testing.T) {
		periods := BuildPeriods([]model.AttendanceRecord{
			rec(1, model.CheckIn, "08:00"),
			rec(2, model.CheckOut, "12:00"),
			rec(3, model.CheckIn, "13:00"),
		})

		require.Len(t, periods, 2)
		assert.Equal(t, at("08:00"), periods[0].CheckIn)
		require.NotNil(t, periods[0].CheckOut)
		assert.Equal(t, at("12:00"), *periods[0].CheckOut)
		assert.Equal(t, 240, *periods[0].DurationMinutes)
		assert.Equal(t, uint(2), periods[0].CheckOutID)

		assert.Equal(t, at("13:00"), periods[1].CheckIn)
		assert.Nil(t, periods[1].CheckOut)
		assert.Nil(t, periods[1].DurationMinutes)
	})

	t.Run("Auto closed by next check in", func(t *testing.T) {
		periods := BuildPeriods([]model.AttendanceRecord{
			rec(1, model.CheckIn, "09:00"),
			rec(2, model.CheckIn, "09:30"),
			rec(3, model.CheckOut, "10:00"),
		})

		require.Len(t, periods, 2)
		assert.True(t, periods[0].AutoClosed)
		assert.Equal(t, 30, *periods[0].DurationMinutes)
		assert.Zero(t, periods[0].CheckOutID)
		assert.False(t, periods[1].AutoClosed)
		assert.Equal(t, 30, *periods[1].DurationMinutes)
	})

	t.Run("Durations add up to the total", func(t *testing.T) {
		records := []model.AttendanceRecord{
			rec(1, model.CheckIn, "07:10"),
			rec(2, model.CheckIn, "08:00"),
			rec(3, model.CheckOut, "11:45"),
			rec(4, model.CheckOut, "12:00"),
			rec(5, model.CheckIn, "12:30"),
			rec(6, model.CheckOut, "16:05"),
			rec(7, model.CheckIn, "18:00"),
		}

		sum := 0
		for _, p := range BuildPeriods(records) {
			if p.DurationMinutes != nil {
				sum += *p.DurationMinutes
			}
		}
		assert.Equal(t, ComputeTotalMinutes(records), sum)
	})
}

func TestCheckOutBeforeCheckInNeverGoesNegative(t *testing.T) {
	// entered out of order: the check out sorts first and is ignored
	records := []model.AttendanceRecord{
		rec(1, model.CheckIn, "10:00"),
		rec(2, model.CheckOut, "09:00"),
	}

	assert.Equal(t, 0, ComputeTotalMinutes(records))
	periods := BuildPeriods(records)
	require.Len(t, periods, 1)
	assert.Nil(t, periods[0].CheckOut)
}

func TestNextExpectedMarkType(t *testing.T) {
	assert.Equal(t, model.CheckIn, NextExpectedMarkType(nil))

	in := rec(1, model.CheckIn, "09:00")
	assert.Equal(t, model.CheckOut, NextExpectedMarkType(&in))

	out := rec(2, model.CheckOut, "17:00")
	assert.Equal(t, model.CheckIn, NextExpectedMarkType(&out))
}

func TestSummarize(t *testing.T) {
	empty := Summarize(nil)
	assert.Equal(t, model.StatusPending, empty.Status)
	assert.Equal(t, model.CheckIn, empty.NextMarkType)
	assert.Zero(t, empty.TotalMinutes)

	open := Summarize([]model.AttendanceRecord{
		rec(1, model.CheckIn, "09:00"),
	})
	assert.Equal(t, model.StatusInProgress, open.Status)
	assert.Equal(t, model.CheckOut, open.NextMarkType)
	assert.Len(t, open.Periods, 1)

	done := Summarize([]model.AttendanceRecord{
		rec(2, model.CheckOut, "17:00"),
		rec(1, model.CheckIn, "09:00"),
	})
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, model.CheckIn, done.NextMarkType)
	assert.Equal(t, 480, done.TotalMinutes)
}
