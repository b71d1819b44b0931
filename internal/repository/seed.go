package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
)

type seedReview struct {
	hotel    int
	reviewer string
	text     string
	label    domain.SentimentLabel
	score    float64
}

var seedHotels = []HotelCreateParams{
	{Name: "Grand Plaza Hotel", Location: "New York, NY", Description: "Luxury hotel in the heart of Manhattan with stunning city views."},
	{Name: "Ocean Breeze Resort", Location: "Miami, FL", Description: "Beachfront resort with world-class amenities and spa services."},
	{Name: "Mountain View Lodge", Location: "Aspen, CO", Description: "Cozy mountain lodge perfect for skiing and outdoor adventures."},
	{Name: "Downtown Business Hotel", Location: "Chicago, IL", Description: "Modern business hotel with conference facilities and fine dining."},
	{Name: "Historic Boutique Inn", Location: "Charleston, SC", Description: "Charming historic inn with southern hospitality and antique furnishings."},
}

// hotel is an index into seedHotels.
var seedReviews = []seedReview{
	{0, "John Smith", "Absolutely fantastic stay at the Grand Plaza! The rooms were spacious and clean, with incredible views of the city skyline. Staff was professional and accommodating throughout our visit.", domain.SentimentPositive, 0.9},
	{0, "Emily Johnson", "The location couldn't be better - right in the heart of Manhattan. However, the rooms were quite noisy due to street traffic, and the WiFi was unreliable during our stay.", domain.SentimentNegative, 0.3},
	{0, "Michael Brown", "Excellent service and luxurious amenities. The concierge helped us get tickets to a Broadway show. The restaurant on the top floor has amazing food and views. Highly recommended!", domain.SentimentPositive, 0.95},
	{1, "Sarah Wilson", "Perfect beachfront location with direct access to the beach. The spa services were relaxing and the pool area was beautiful. Great for a romantic getaway.", domain.SentimentPositive, 0.85},
	{1, "David Lee", "The resort is showing its age - needs renovation. Food quality was disappointing for the price point. Beach was crowded and the service was slow.", domain.SentimentNegative, 0.25},
	{2, "Lisa Chen", "Cozy mountain atmosphere with stunning views. Perfect for a skiing vacation. The fireplace in the lobby was a nice touch, and the hot chocolate was delicious.", domain.SentimentPositive, 0.8},
}

// Seed inserts the sample hotels and reviews when the hotels table is empty.
// Reviews go through Append so the aggregates match the stored scores.
func (r *Repository) Seed(ctx context.Context, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	n, err := r.Hotels.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		logger.Info("repository: database already seeded", slog.Int64("hotels", n))
		return false, nil
	}

	ids := make([]int64, len(seedHotels))
	for i, params := range seedHotels {
		hotel, err := r.Hotels.Create(ctx, params)
		if err != nil {
			return false, fmt.Errorf("seed hotel %q: %w", params.Name, err)
		}
		ids[i] = hotel.ID
	}
	for _, sr := range seedReviews {
		_, _, err := r.Reviews.Append(ctx, ReviewAppendParams{
			HotelID:        ids[sr.hotel],
			ReviewerName:   sr.reviewer,
			ReviewText:     sr.text,
			SentimentLabel: sr.label,
			SentimentScore: sr.score,
		})
		if err != nil {
			return false, fmt.Errorf("seed review by %s: %w", sr.reviewer, err)
		}
	}

	logger.Info("repository: seeded sample data",
		slog.Int("hotels", len(seedHotels)),
		slog.Int("reviews", len(seedReviews)))
	return true, nil
}
