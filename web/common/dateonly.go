package common

import (
	"encoding/json"
	"fmt"
	"time"

	"axiapac.com/backoffice/utils"
)

// DateOnly binds "yyyy-MM-dd" request fields.
type DateOnly struct {
	time.Time
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	// b is a quoted string like `"2025-10-29"`
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.ParseInLocation(utils.DateLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date format: %v", err)
	}

	d.Time = t
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(utils.DateLayout))
}

func (d DateOnly) String() string {
	return d.Format(utils.DateLayout)
}

// TimePtr returns nil for a nil or empty date.
func (d *DateOnly) TimePtr() *time.Time {
	if d == nil || d.Time.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
