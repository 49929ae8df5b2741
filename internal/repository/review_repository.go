package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"reviewhub/internal/models"
)

type ReviewRepository struct {
	db DB
}

func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts the review and fills in the server-assigned creation time.
func (r *ReviewRepository) Create(ctx context.Context, review models.Review) (models.Review, error) {
	const query = `
		INSERT INTO reviews (id, user_id, title, content, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	row := r.db.QueryRow(ctx, query,
		review.ID,
		review.UserID,
		review.Title,
		review.Content,
		review.Rating,
	)
	if err := row.Scan(&review.CreatedAt); err != nil {
		return models.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

func (r *ReviewRepository) ListAll(ctx context.Context) ([]models.ReviewSummary, error) {
	const query = `
		SELECT r.id, r.user_id, r.title, r.content, r.rating, r.created_at,
		       u.first_name, u.last_name
		FROM reviews r
		INNER JOIN users u ON r.user_id = u.id
		ORDER BY r.created_at DESC, r.id DESC
	`
	return r.list(ctx, query)
}

func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]models.ReviewSummary, error) {
	const query = `
		SELECT r.id, r.user_id, r.title, r.content, r.rating, r.created_at,
		       u.first_name, u.last_name
		FROM reviews r
		INNER JOIN users u ON r.user_id = u.id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC
	`
	return r.list(ctx, query, userID)
}

func (r *ReviewRepository) list(ctx context.Context, query string, args ...any) ([]models.ReviewSummary, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]models.ReviewSummary, 0)
	for rows.Next() {
		var review models.ReviewSummary
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.Title,
			&review.Content,
			&review.Rating,
			&review.CreatedAt,
			&review.AuthorFirstName,
			&review.AuthorLastName,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// RatingCounts returns the number of reviews per rating value.
func (r *ReviewRepository) RatingCounts(ctx context.Context) (map[int]int, error) {
	const query = `SELECT rating, COUNT(*) FROM reviews GROUP BY rating`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rating counts: %w", err)
	}

	counts := make(map[int]int)
	var rating, count int
	_, err = pgx.ForEachRow(rows, []any{&rating, &count}, func() error {
		counts[rating] = count
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan rating counts: %w", err)
	}
	return counts, nil
}
