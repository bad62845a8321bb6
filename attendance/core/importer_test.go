package core

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"axiapac.com/backoffice/attendance/model"
	"axiapac.com/backoffice/internal/testdb"
	"axiapac.com/backoffice/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const punchCSV = `user_id,type,timestamp,location,notes
1,check_in,2025-10-13T09:00:00Z,Office
2,,2025-10-13T08:00:00Z,Remote
1,check_out,2025-10-13T17:00:00Z,Office,left via gate 2
2,,2025-10-13T12:30:00Z,Remote
1,check_in,2025-10-14T01:00:00Z,Office
`

func TestParsePunchCSV(t *testing.T) {
	punches, err := ParsePunchCSV(strings.NewReader(punchCSV), time.UTC)
	require.NoError(t, err)
	require.Len(t, punches, 5)

	assert.Equal(t, uint(1), punches[0].UserID)
	assert.Equal(t, model.CheckIn, punches[0].Type)
	assert.Equal(t, "2025-10-13", punches[0].Date)
	assert.Equal(t, "Office", punches[0].Location)
	assert.Empty(t, punches[1].Type)
	assert.Equal(t, "left via gate 2", punches[2].Notes)
}

func TestParsePunchCSV_LocalDate(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)

	punches, err := ParsePunchCSV(strings.NewReader(punchCSV), loc)
	require.NoError(t, err)

	// 01:00 UTC on the 14th is the evening of the 13th
	assert.Equal(t, "2025-10-13", punches[4].Date)
}

func TestParsePunchCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{"short row", "h\n1,check_in,2025-10-13T09:00:00Z\n", "expected at least 4 columns"},
		{"bad user", "h\nabc,check_in,2025-10-13T09:00:00Z,Office\n", "invalid user id"},
		{"bad type", "h\n1,lunch,2025-10-13T09:00:00Z,Office\n", "invalid type"},
		{"bad timestamp", "h\n1,check_in,yesterday,Office\n", "invalid timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePunchCSV(strings.NewReader(tt.csv), time.UTC)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGroupPunches(t *testing.T) {
	punches, err := ParsePunchCSV(strings.NewReader(punchCSV), time.UTC)
	require.NoError(t, err)

	groups := GroupPunches(punches)
	require.Len(t, groups, 3)

	assert.Equal(t, "2025-10-13", groups[0].Date)
	assert.Equal(t, uint(1), groups[0].UserID)
	assert.Len(t, groups[0].Punches, 2)
	assert.Equal(t, 8*time.Hour, groups[0].To.Sub(groups[0].From))

	assert.Equal(t, uint(2), groups[1].UserID)
	assert.Equal(t, "2025-10-14", groups[2].Date)
}

func TestImport(t *testing.T) {
	db := testdb.New(t)

	punches, err := ParsePunchCSV(strings.NewReader(punchCSV), time.UTC)
	require.NoError(t, err)

	result, err := Import(db, GroupPunches(punches))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Days: 3, Records: 5}, result)

	days, _, err := ListDays(db, DayFilter{From: "2025-10-13", To: "2025-10-13"})
	require.NoError(t, err)
	require.Len(t, days, 2)

	byUser := map[uint]model.Attendance{}
	for _, d := range days {
		byUser[d.UserID] = d
	}
	assert.Equal(t, 480, byUser[1].TotalMinutes)
	// untyped rows alternate: 08:00 in, 12:30 out
	assert.Equal(t, 270, byUser[2].TotalMinutes)
	assert.Equal(t, model.StatusCompleted, byUser[2].Status)

	records, err := ListRecords(db, byUser[1].ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NotNil(t, records[1].Notes)
	assert.Equal(t, "left via gate 2", *records[1].Notes)
}

func TestImport_InterleavesWithStoredRecords(t *testing.T) {
	db := testdb.New(t)

	_, err := Mark(db, time.UTC, at("13:00"), MarkInput{UserID: 4, Type: model.CheckIn})
	require.NoError(t, err)

	punches, err := ParsePunchCSV(strings.NewReader(`user_id,type,timestamp,location
4,,2025-10-13T12:00:00Z,Office
4,,2025-10-13T08:00:00Z,Office
`), time.UTC)
	require.NoError(t, err)

	_, err = Import(db, GroupPunches(punches))
	require.NoError(t, err)

	days, _, err := ListDays(db, DayFilter{UserID: utils.Ptr(uint(4))})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 240, days[0].TotalMinutes)
	assert.Equal(t, model.StatusInProgress, days[0].Status)

	records, err := ListRecords(db, days[0].ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []model.MarkType{model.CheckIn, model.CheckOut, model.CheckIn},
		utils.Map(records, func(r model.AttendanceRecord) model.MarkType { return r.Type }))
}

func TestParsePunchXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"user_id", "type", "timestamp", "location"},
		{"3", "check_in", "2025-10-13T07:00:00Z", " Yard "},
		{},
		{"3", "check_out", "2025-10-13T15:30:00Z", "Yard"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	punches, err := ParsePunchXLSX(&buf, time.UTC)
	require.NoError(t, err)
	require.Len(t, punches, 2)
	assert.Equal(t, "Yard", punches[0].Location)
	assert.Equal(t, model.CheckOut, punches[1].Type)
}

func TestParsePunchFile(t *testing.T) {
	punches, err := ParsePunchFile("export.CSV", strings.NewReader(punchCSV), time.UTC)
	require.NoError(t, err)
	assert.Len(t, punches, 5)

	_, err = ParsePunchFile("punches.pdf", strings.NewReader(""), time.UTC)
	assert.ErrorContains(t, err, "unsupported file type")
}
