package domain

import "time"

// HotelAggregate is the running sentiment mean for a hotel.
type HotelAggregate struct {
	AverageSentiment float64
	TotalReviews     int64
}

// Hotel represents the canonical hotel entity in the database/service.
type Hotel struct {
	ID          int64
	Name        string
	Location    string
	Description string
	HotelAggregate
	CreatedAt time.Time
	UpdatedAt time.Time
}
