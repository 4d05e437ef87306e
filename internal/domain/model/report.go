package model

import "time"

// ReportEntry is one approved time entry flattened for reporting.
type ReportEntry struct {
	Date      time.Time `json:"date"       db:"date"`
	Hours     float64   `json:"hours"      db:"hours"`
	JobNumber string    `json:"job_number" db:"job_number"`
	JobTitle  string    `json:"job_title"  db:"job_title"`
}

// WeeklyReport aggregates one user's approved hours over a Sunday-to-Saturday
// week, matching what the Reports tab renders and exports.
type WeeklyReport struct {
	UserID       string        `json:"user_id"`
	WeekStart    time.Time     `json:"week_start"`
	WeekEnd      time.Time     `json:"week_end"`
	TotalHours   float64       `json:"total_hours"`
	JobCount     int           `json:"job_count"`
	AverageDaily float64       `json:"average_daily"`
	Entries      []ReportEntry `json:"entries"`
}

// WeekBounds returns the Sunday and Saturday of the week containing ref,
// truncated to dates in UTC.
func WeekBounds(ref time.Time) (time.Time, time.Time) {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start, end
}
