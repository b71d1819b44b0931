package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/sentiment"
)

// ReviewsRepository provides helpers for hotel reviews.
type ReviewsRepository struct {
	pool *pgxpool.Pool
}

const reviewColumns = `
    id,
    hotel_id,
    reviewer_name,
    review_text,
    sentiment_label,
    sentiment_score,
    created_at
`

// ReviewAppendParams captures a review and its already-computed sentiment.
type ReviewAppendParams struct {
	HotelID        int64
	ReviewerName   string
	ReviewText     string
	SentimentLabel domain.SentimentLabel
	SentimentScore float64
}

// Append stores the review and folds its score into the hotel aggregate in one
// transaction. The hotel row is locked for the duration, so concurrent appends
// to the same hotel serialize and none is lost.
func (r *ReviewsRepository) Append(ctx context.Context, params ReviewAppendParams) (domain.Review, domain.HotelAggregate, error) {
	var (
		review domain.Review
		agg    domain.HotelAggregate
	)

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var current domain.HotelAggregate
		err := tx.QueryRow(ctx, `
            SELECT average_sentiment, total_reviews
            FROM hotels
            WHERE id = $1
            FOR UPDATE
        `, params.HotelID).Scan(&current.AverageSentiment, &current.TotalReviews)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock hotel: %w", err)
		}

		query := fmt.Sprintf(`
            INSERT INTO reviews (hotel_id, reviewer_name, review_text, sentiment_label, sentiment_score)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING %s
        `, reviewColumns)
		review, err = scanReview(tx.QueryRow(ctx, query,
			params.HotelID, params.ReviewerName, params.ReviewText, string(params.SentimentLabel), params.SentimentScore))
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}

		agg = sentiment.UpdateAggregate(current, params.SentimentScore)
		if _, err := tx.Exec(ctx, `
            UPDATE hotels
            SET average_sentiment = $2, total_reviews = $3, updated_at = now()
            WHERE id = $1
        `, params.HotelID, agg.AverageSentiment, agg.TotalReviews); err != nil {
			return fmt.Errorf("update aggregate: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Review{}, domain.HotelAggregate{}, err
	}
	return review, agg, nil
}

// ListByHotel returns a hotel's reviews in insertion order.
func (r *ReviewsRepository) ListByHotel(ctx context.Context, hotelID int64) ([]domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE hotel_id = $1 ORDER BY id`, reviewColumns)
	rows, err := r.pool.Query(ctx, query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var (
		rv    domain.Review
		label string
	)
	err := row.Scan(
		&rv.ID,
		&rv.HotelID,
		&rv.ReviewerName,
		&rv.ReviewText,
		&label,
		&rv.SentimentScore,
		&rv.CreatedAt,
	)
	rv.SentimentLabel = domain.SentimentLabel(label)
	return rv, err
}
