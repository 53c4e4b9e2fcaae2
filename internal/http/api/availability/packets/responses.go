package packets

type AvailabilityResponse struct {
	ID        int    `json:"id"`
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type OccurrenceResponse struct {
	AvailabilityID int    `json:"availability_id"`
	DayOfWeek      string `json:"day_of_week"`
	Start          string `json:"start"`
	End            string `json:"end"`
}
