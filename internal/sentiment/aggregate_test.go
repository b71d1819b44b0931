package sentiment

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
)

func TestUpdateAggregateFromZero(t *testing.T) {
	agg := UpdateAggregate(domain.HotelAggregate{}, 0.9)
	if agg.TotalReviews != 1 {
		t.Fatalf("TotalReviews = %d, want 1", agg.TotalReviews)
	}
	if agg.AverageSentiment != 0.9 {
		t.Fatalf("AverageSentiment = %v, want 0.9", agg.AverageSentiment)
	}
}

func TestUpdateAggregateMatchesMean(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
	}{
		{"single", []float64{0.25}},
		{"seed reviews", []float64{0.9, 0.3, 0.95}},
		{"extremes", []float64{0, 1, 0, 1}},
		{"neutral run", []float64{0.5, 0.5, 0.5, 0.5, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var agg domain.HotelAggregate
			sum := 0.0
			for _, s := range tt.scores {
				agg = UpdateAggregate(agg, s)
				sum += s
			}
			want := sum / float64(len(tt.scores))
			if agg.TotalReviews != int64(len(tt.scores)) {
				t.Fatalf("TotalReviews = %d, want %d", agg.TotalReviews, len(tt.scores))
			}
			if math.Abs(agg.AverageSentiment-want) > 1e-9 {
				t.Fatalf("AverageSentiment = %v, want %v", agg.AverageSentiment, want)
			}
		})
	}
}

func TestUpdateAggregateOrderIndependent(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	scores := make([]float64, 200)
	for i := range scores {
		scores[i] = rnd.Float64()
	}

	fold := func(in []float64) domain.HotelAggregate {
		var agg domain.HotelAggregate
		for _, s := range in {
			agg = UpdateAggregate(agg, s)
		}
		return agg
	}

	forward := fold(scores)
	shuffled := append([]float64(nil), scores...)
	rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	reordered := fold(shuffled)

	if forward.TotalReviews != reordered.TotalReviews {
		t.Fatalf("counts differ: %d vs %d", forward.TotalReviews, reordered.TotalReviews)
	}
	if math.Abs(forward.AverageSentiment-reordered.AverageSentiment) > 1e-9 {
		t.Fatalf("averages differ: %v vs %v", forward.AverageSentiment, reordered.AverageSentiment)
	}
}

func BenchmarkUpdateAggregate(b *testing.B) {
	var agg domain.HotelAggregate
	for i := 0; i < b.N; i++ {
		agg = UpdateAggregate(agg, 0.75)
	}
	_ = agg
}
