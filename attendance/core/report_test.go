package core

import (
	"testing"
	"time"

	"axiapac.com/backoffice/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthReport(t *testing.T) {
	db := testdb.New(t)

	for _, m := range []struct {
		user uint
		ts   time.Time
	}{
		{2, at("08:00")},
		{2, at("16:00")},
		{1, at("09:00")},
		{1, time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)},
	} {
		_, err := Mark(db, time.UTC, m.ts, MarkInput{UserID: m.user})
		require.NoError(t, err)
	}

	rows, err := MonthReport(db, "2025-10")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, uint(1), rows[0].UserID)
	assert.True(t, rows[0].OpenPeriod)
	assert.Nil(t, rows[0].LastOut)
	assert.Zero(t, rows[0].TotalMinutes)

	assert.Equal(t, uint(2), rows[1].UserID)
	assert.Equal(t, 480, rows[1].TotalMinutes)
	assert.Equal(t, 2, rows[1].Marks)
	require.NotNil(t, rows[1].FirstIn)
	assert.True(t, at("08:00").Equal(*rows[1].FirstIn))

	_, err = MonthReport(db, "October")
	assert.Error(t, err)

	empty, err := MonthReport(db, "2024-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
