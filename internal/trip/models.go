package trip

import "time"

// Trip is a date-bounded collection of cycling activities. StartDate
// and EndDate are calendar dates; only their UTC midnight matters.
type Trip struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	BlogCategory int       `json:"blog_category"`
	CreatedAt    time.Time `json:"created_at"`
}
