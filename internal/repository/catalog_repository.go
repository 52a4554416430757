package repository

import (
	"context"
	"errors"
	"fmt"

	"bookshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogRepository implements the CatalogRepository interface using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalogue repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

// FindBooksByIDs retrieves the live books matching the given IDs in one query.
func (r *catalogRepository) FindBooksByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Book, error) {
	if len(ids) == 0 {
		return []model.Book{}, nil
	}

	query := `
		SELECT id, title, writer, publisher, publication_year, price, stock_quantity, genre_id, created_at
		FROM books
		WHERE id = ANY($1) AND deleted_at IS NULL
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query books by IDs")
		return nil, fmt.Errorf("failed to query books by IDs: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		var b model.Book
		err := rows.Scan(&b.ID, &b.Title, &b.Writer, &b.Publisher, &b.PublicationYear,
			&b.Price, &b.StockQuantity, &b.GenreID, &b.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan book row")
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating book rows")
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// FindGenre retrieves a live genre by its ID.
func (r *catalogRepository) FindGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	query := `
		SELECT id, name, created_at
		FROM genres
		WHERE id = $1 AND deleted_at IS NULL
	`

	var g model.Genre
	err := r.pool.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("genre_id", id.String()).Msg("genre not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("genre_id", id.String()).Msg("failed to query genre")
		return nil, fmt.Errorf("failed to query genre: %w", err)
	}

	return &g, nil
}
