package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
)

// MaxListLimit caps a single page of hotels.
const MaxListLimit = 100

// HotelsRepository provides persistence helpers for hotel entities.
type HotelsRepository struct {
	pool *pgxpool.Pool
}

const hotelColumns = `
    id,
    name,
    location,
    description,
    average_sentiment,
    total_reviews,
    created_at,
    updated_at
`

// HotelCreateParams bundles the fields required to create a hotel.
type HotelCreateParams struct {
	Name        string
	Location    string
	Description string
}

// Create inserts a new hotel with an empty aggregate.
func (r *HotelsRepository) Create(ctx context.Context, params HotelCreateParams) (domain.Hotel, error) {
	query := fmt.Sprintf(`
        INSERT INTO hotels (name, location, description)
        VALUES ($1,$2,$3)
        RETURNING %s
    `, hotelColumns)

	return scanHotel(r.pool.QueryRow(ctx, query, params.Name, params.Location, params.Description))
}

// GetByID fetches a hotel by its identifier.
func (r *HotelsRepository) GetByID(ctx context.Context, id int64) (domain.Hotel, error) {
	query := fmt.Sprintf(`SELECT %s FROM hotels WHERE id = $1`, hotelColumns)
	hotel, err := scanHotel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Hotel{}, ErrNotFound
		}
		return domain.Hotel{}, err
	}
	return hotel, nil
}

// FindByName returns the lowest-id hotel whose name contains substring,
// case-insensitively.
func (r *HotelsRepository) FindByName(ctx context.Context, substring string) (domain.Hotel, error) {
	substring = strings.TrimSpace(substring)
	if substring == "" {
		return domain.Hotel{}, ErrNotFound
	}

	query := fmt.Sprintf(`
        SELECT %s FROM hotels
        WHERE name ILIKE $1 ESCAPE '\'
        ORDER BY id
        LIMIT 1
    `, hotelColumns)
	hotel, err := scanHotel(r.pool.QueryRow(ctx, query, "%"+escapeLike(substring)+"%"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Hotel{}, ErrNotFound
		}
		return domain.Hotel{}, err
	}
	return hotel, nil
}

// List returns a page of hotels ordered by id.
func (r *HotelsRepository) List(ctx context.Context, skip, limit int) ([]domain.Hotel, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	if skip < 0 {
		skip = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM hotels ORDER BY id OFFSET $1 LIMIT $2`, hotelColumns)
	rows, err := r.pool.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Hotel, 0, limit)
	for rows.Next() {
		hotel, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, hotel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Count returns the number of stored hotels.
func (r *HotelsRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hotels`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count hotels: %w", err)
	}
	return n, nil
}

func scanHotel(row pgx.Row) (domain.Hotel, error) {
	var h domain.Hotel
	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Location,
		&h.Description,
		&h.AverageSentiment,
		&h.TotalReviews,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	return h, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
