package domain

import "time"

// Review represents a single guest review for a hotel.
type Review struct {
	ID             int64
	HotelID        int64
	ReviewerName   string
	ReviewText     string
	SentimentLabel SentimentLabel
	SentimentScore float64
	CreatedAt      time.Time
}
