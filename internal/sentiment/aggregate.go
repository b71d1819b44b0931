package sentiment

import "github.com/Clark-Hu/hotel-review-sentiment/internal/domain"

// UpdateAggregate folds score into the running mean held by agg. It keeps no
// history; callers persist the returned value atomically with the review.
func UpdateAggregate(agg domain.HotelAggregate, score float64) domain.HotelAggregate {
	total := agg.AverageSentiment*float64(agg.TotalReviews) + score
	count := agg.TotalReviews + 1
	return domain.HotelAggregate{
		AverageSentiment: total / float64(count),
		TotalReviews:     count,
	}
}
