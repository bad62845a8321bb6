package core

import (
	attendance "axiapac.com/backoffice/attendance/model"
	clients "axiapac.com/backoffice/clients/model"
	"gorm.io/gorm"
)

// Models lists every table the service owns.
func Models() []any {
	return []any{
		&attendance.Attendance{},
		&attendance.AttendanceRecord{},
		&clients.Client{},
		&clients.Service{},
		&clients.ClientService{},
		&clients.ServicePayment{},
		&clients.ServiceRenewal{},
		&clients.ServiceIncident{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
