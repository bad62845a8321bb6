package core

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"axiapac.com/backoffice/attendance/model"
	"axiapac.com/backoffice/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Punch is one row of a punch export: user_id,type,timestamp,location[,notes].
type Punch struct {
	Row       int
	UserID    uint
	Type      model.MarkType
	Timestamp time.Time
	Date      string
	Location  string
	Notes     string
}

// PunchGroup holds one user's punches for one local date.
type PunchGroup struct {
	UserID  uint
	Date    string
	From    time.Time
	To      time.Time
	Punches []Punch
}

type ImportResult struct {
	Days    int `json:"days"`
	Records int `json:"records"`
}

// ParsePunchCSV reads a punch export with a header row. Dates are taken in
// loc; an empty type is inferred later by alternation.
func ParsePunchCSV(r io.Reader, loc *time.Location) ([]Punch, error) {
	rows, err := utils.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return ParsePunchRows(rows, loc)
}

// ParsePunchFile picks the parser from the file extension.
func ParsePunchFile(name string, r io.Reader, loc *time.Location) ([]Punch, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ParsePunchCSV(r, loc)
	case ".xlsx":
		return ParsePunchXLSX(r, loc)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
}

// ParsePunchXLSX reads the first sheet of a workbook laid out like the CSV.
func ParsePunchXLSX(r io.Reader, loc *time.Location) ([]Punch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return ParsePunchRows(rows, loc)
}

// ParsePunchRows converts raw rows, skipping the header and empty rows.
func ParsePunchRows(rows [][]string, loc *time.Location) ([]Punch, error) {
	var punches []Punch
	for i, row := range rows {
		if i == 0 || len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}

		if len(row) < 4 {
			return nil, fmt.Errorf("row %d: expected at least 4 columns, got %d", i, len(row))
		}

		userID, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil || userID == 0 {
			return nil, fmt.Errorf("row %d: invalid user id %q", i, row[0])
		}

		markType := model.MarkType(row[1])
		if markType != "" && !markType.Valid() {
			return nil, fmt.Errorf("row %d: invalid type %q", i, row[1])
		}

		timestamp, err := utils.ParseISOTime(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp: %w", i, err)
		}

		p := Punch{
			Row:       i,
			UserID:    uint(userID),
			Type:      markType,
			Timestamp: timestamp.UTC(),
			Date:      utils.LocalDate(*timestamp, loc),
			Location:  row[3],
		}
		if len(row) > 4 {
			p.Notes = row[4]
		}
		punches = append(punches, p)
	}

	return punches, nil
}

// GroupPunches groups punches per user and local date. Groups come back
// ordered by date then user, punches by timestamp.
func GroupPunches(punches []Punch) []PunchGroup {
	type key struct {
		userID uint
		date   string
	}
	grouped := utils.GroupBy(punches, func(p Punch) key { return key{p.UserID, p.Date} })

	groups := make([]PunchGroup, 0, len(grouped))
	for k, ps := range grouped {
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Timestamp.Before(ps[j].Timestamp) })
		groups = append(groups, PunchGroup{
			UserID:  k.userID,
			Date:    k.date,
			From:    ps[0].Timestamp,
			To:      ps[len(ps)-1].Timestamp,
			Punches: ps,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Date == groups[j].Date {
			return groups[i].UserID < groups[j].UserID
		}
		return groups[i].Date < groups[j].Date
	})
	return groups
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Import appends every group to its day and recomputes the touched days.
// Each day is written in its own transaction. An untyped punch follows the
// record just before it on the day's timeline, stored or imported.
func Import(db *gorm.DB, groups []PunchGroup) (ImportResult, error) {
	var result ImportResult
	for _, g := range groups {
		err := db.Transaction(func(tx *gorm.DB) error {
			day, err := FindOrCreateDay(tx, g.UserID, g.Date)
			if err != nil {
				return err
			}

			timeline, err := ListRecords(tx, day.ID)
			if err != nil {
				return err
			}

			for _, p := range g.Punches {
				markType := p.Type
				if markType == "" {
					markType = NextExpectedMarkType(precedingRecord(timeline, p.Timestamp))
				}
				record := &model.AttendanceRecord{
					AttendanceID: day.ID,
					Type:         markType,
					Timestamp:    p.Timestamp,
					Location:     optional(p.Location),
					Notes:        optional(p.Notes),
				}
				if err := AppendRecord(tx, record); err != nil {
					return fmt.Errorf("row %d: %w", p.Row, err)
				}
				timeline = SortRecords(append(timeline, *record))
			}

			_, err = Recompute(tx, day.ID)
			return err
		})
		if err != nil {
			return result, fmt.Errorf("user %d on %s: %w", g.UserID, g.Date, err)
		}
		result.Days++
		result.Records += len(g.Punches)
	}
	return result, nil
}
