package model

import "time"

// Availability is one stored weekly time range. Times are 24-hour "HH:MM".
type Availability struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"-"`
	DayOfWeek string    `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AvailabilityOccurrence is one concrete instance of a weekly range.
type AvailabilityOccurrence struct {
	AvailabilityID int       `json:"availability_id"`
	DayOfWeek      string    `json:"day_of_week"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
}
