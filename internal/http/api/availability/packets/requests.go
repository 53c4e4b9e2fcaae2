package packets

import "time"

// body for adding one weekly range; times are zero-padded 24-hour "HH:MM"
type CreateAvailabilityRequest struct {
	DayOfWeek string `json:"day_of_week" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// query for expanding weekly ranges into concrete occurrences in [from, to)
type ListOccurrencesQuery struct {
	From     time.Time `form:"from" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	To       time.Time `form:"to" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	Timezone string    `form:"tz"`
}
