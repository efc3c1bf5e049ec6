package models

import "time"

const (
	AvailabilityAvailable   = "available"
	AvailabilityBusy        = "busy"
	AvailabilityUnavailable = "unavailable"
)

// CoachRecord is the snapshot of a coach that the matcher and the pricing
// flows read. It is never mutated while a request is being served.
type CoachRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Expertise    []string  `json:"expertise"`
	Experience   string    `json:"experience"`
	Rating       float64   `json:"rating"`
	HourlyRate   float64   `json:"hourly_rate"`
	Currency     string    `json:"currency"`
	Availability string    `json:"availability"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CoachListResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Expertise    []string `json:"expertise"`
	Experience   string   `json:"experience"`
	Rating       float64  `json:"rating"`
	HourlyRate   float64  `json:"hourly_rate"`
	Currency     string   `json:"currency"`
	Availability string   `json:"availability"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func (c CoachRecord) Summary() CoachListResponse {
	expertise := c.Expertise
	if expertise == nil {
		expertise = []string{}
	}
	return CoachListResponse{
		ID:           c.ID,
		Name:         c.Name,
		Expertise:    expertise,
		Experience:   c.Experience,
		Rating:       c.Rating,
		HourlyRate:   c.HourlyRate,
		Currency:     c.Currency,
		Availability: c.Availability,
	}
}
