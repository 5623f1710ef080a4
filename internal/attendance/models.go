package attendance

import "time"

// Record is an immutable snapshot of a closed check-in session. Once appended
// to the log it is never updated, only evicted when the log exceeds capacity.
type Record struct {
	ID              string    `json:"id"`
	MemberID        string    `json:"memberId"`
	Name            string    `json:"name"`
	CheckInTime     time.Time `json:"checkInTime"`
	Purpose         string    `json:"purpose"`
	Topic           string    `json:"topic"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Duration        string    `json:"duration"`
	DurationMinutes int       `json:"durationMinutes"`
	IsTemporary     bool      `json:"isTemporary,omitempty"`
}

// Stats summarizes the stored log for status displays.
type Stats struct {
	Total          int     `json:"total"`
	Today          int     `json:"today"`
	Active         int     `json:"active"`
	AverageMinutes float64 `json:"averageMinutes"`
}
