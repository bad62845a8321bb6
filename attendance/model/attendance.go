package model

import (
	"time"

	"gorm.io/gorm"
)

type MarkType string

const (
	CheckIn  MarkType = "check_in"
	CheckOut MarkType = "check_out"
)

func (m MarkType) Valid() bool {
	return m == CheckIn || m == CheckOut
}

// Opposite returns the other mark type.
func (m MarkType) Opposite() MarkType {
	if m == CheckIn {
		return CheckOut
	}
	return CheckIn
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Attendance is one user's envelope for a calendar day. TotalMinutes and
// Status are derived from the records and can be replayed at any time.
type Attendance struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_attendance_user_date" json:"user_id"`
	Date         string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_user_date;index" json:"date"`
	TotalMinutes int       `gorm:"not null;default:0" json:"total_minutes"`
	Status       Status    `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Records []AttendanceRecord `gorm:"foreignKey:AttendanceID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// AttendanceRecord is a single punch. Records are never updated; deleting one
// only marks it deleted.
type AttendanceRecord struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AttendanceID uint           `gorm:"not null;index" json:"attendance_id"`
	Type         MarkType       `gorm:"type:varchar(20);not null" json:"type"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp"`
	Location     *string        `gorm:"type:varchar(255)" json:"location"`
	Notes        *string        `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time      `gorm:"<-:create" json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// Period pairs a check-in with the mark that closed it. CheckOut and
// DurationMinutes are nil while the period is still open.
type Period struct {
	CheckIn         time.Time  `json:"check_in"`
	CheckOut        *time.Time `json:"check_out"`
	DurationMinutes *int       `json:"duration_minutes"`
	CheckInID       uint       `json:"check_in_id"`
	CheckOutID      uint       `json:"check_out_id,omitempty"`
	// AutoClosed marks a period closed by a later check-in instead of a check-out.
	AutoClosed bool `json:"auto_closed,omitempty"`
}
