package repository

import (
	"context"
	"errors"
	"fmt"

	"bookshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// Commit persists the order, its lines and the stock decrements in a single
// transaction. Each decrement is conditional on the remaining stock, so two
// overlapping commits can never drive a book below zero: the slower one sees
// zero rows affected, the whole unit rolls back and the caller gets
// model.ErrStockConflict.
func (r *orderRepository) Commit(ctx context.Context, order *model.Order, lines []model.OrderLine) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("%w: begin transaction: %w", model.ErrCommitFailed, err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, user_id, total_price, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = tx.Exec(ctx, orderQuery,
		order.ID, order.UserID, order.TotalPrice, order.IdempotencyKey, order.CreatedAt)
	if err != nil {
		return r.mapCommitError(err, order.ID)
	}

	lineQuery := `
		INSERT INTO order_lines (id, order_id, book_id, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(lineQuery, line.ID, line.OrderID, line.BookID, line.UnitPrice, line.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return r.mapCommitError(err, order.ID)
		}
	}
	if err := results.Close(); err != nil {
		return r.mapCommitError(err, order.ID)
	}

	decrementQuery := `
		UPDATE books
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND deleted_at IS NULL AND stock_quantity >= $2
	`

	for _, line := range lines {
		tag, err := tx.Exec(ctx, decrementQuery, line.BookID, line.Quantity)
		if err != nil {
			return r.mapCommitError(err, order.ID)
		}
		if tag.RowsAffected() == 0 {
			r.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("book_id", line.BookID.String()).
				Int("quantity", line.Quantity).
				Msg("conditional stock decrement affected no rows")
			return model.ErrStockConflict
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return r.mapCommitError(err, order.ID)
	}

	r.logger.Info().
		Str("order_id", order.ID.String()).
		Int("line_count", len(lines)).
		Msg("order committed")

	return nil
}

// mapCommitError translates storage failures into domain errors without
// leaking driver details to callers.
func (r *orderRepository) mapCommitError(err error, orderID uuid.UUID) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == "ux_orders_idempotency_key" {
				return model.ErrIdempotentReplay
			}
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return model.ErrStockConflict
		case pgerrcode.CheckViolation:
			// The stock_quantity >= 0 constraint is the backstop behind
			// the conditional decrement.
			return model.ErrStockConflict
		}
	}

	r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("order commit failed")
	return fmt.Errorf("%w: %w", model.ErrCommitFailed, err)
}

// GetByID retrieves an order joined with its lines, book titles and current
// genre names. Soft-deleted books stay readable through their historical
// lines.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	orderQuery := `
		SELECT id, user_id, total_price, created_at
		FROM orders
		WHERE id = $1
	`

	var detail model.OrderDetail
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&detail.ID, &detail.UserID, &detail.TotalPrice, &detail.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	lines, err := r.queryLines(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Lines = lines

	return &detail, nil
}

// GetByIdempotencyKey retrieves the order previously committed under the key.
func (r *orderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.OrderDetail, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM orders WHERE idempotency_key = $1`, key,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query order by idempotency key")
		return nil, fmt.Errorf("failed to query order by idempotency key: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *orderRepository) queryLines(ctx context.Context, orderID uuid.UUID) ([]model.OrderLineDetail, error) {
	linesQuery := `
		SELECT ol.book_id, b.title, COALESCE(g.name, ''), ol.unit_price, ol.quantity
		FROM order_lines ol
		JOIN books b ON b.id = ol.book_id
		LEFT JOIN genres g ON g.id = b.genre_id AND g.deleted_at IS NULL
		WHERE ol.order_id = $1
		ORDER BY b.title
	`

	rows, err := r.pool.Query(ctx, linesQuery, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order lines")
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.OrderLineDetail
	for rows.Next() {
		var l model.OrderLineDetail
		if err := rows.Scan(&l.BookID, &l.Title, &l.GenreName, &l.UnitPrice, &l.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line rows")
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return lines, nil
}

// List retrieves order summaries, newest first.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]model.OrderSummary, error) {
	query := `
		SELECT o.id, o.user_id, o.total_price, o.created_at, COUNT(ol.id)
		FROM orders o
		JOIN order_lines ol ON ol.order_id = o.id
		GROUP BY o.id, o.user_id, o.total_price, o.created_at
		ORDER BY o.created_at DESC, o.id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.OrderSummary
	for rows.Next() {
		var o model.OrderSummary
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.CreatedAt, &o.LineCount); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order summary row")
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order summary rows")
		return nil, fmt.Errorf("error iterating order summaries: %w", err)
	}

	return orders, nil
}

// Totals returns the committed order count and the sum of all order totals.
func (r *orderRepository) Totals(ctx context.Context) (int64, decimal.Decimal, error) {
	var count int64
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_price), 0) FROM orders`,
	).Scan(&count, &sum)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order totals")
		return 0, decimal.Zero, fmt.Errorf("failed to query order totals: %w", err)
	}

	return count, sum, nil
}

// StreamLineGenres walks every order line joined to the current genre of its
// book, one row at a time. Genre credit follows the book's genre as of now,
// not the genre at purchase time, and lines of soft-deleted books drop out
// of the ranking entirely.
func (r *orderRepository) StreamLineGenres(ctx context.Context, fn func(model.LineGenre) error) error {
	query := `
		SELECT b.genre_id, g.name, ol.quantity
		FROM order_lines ol
		JOIN books b ON b.id = ol.book_id AND b.deleted_at IS NULL
		JOIN genres g ON g.id = b.genre_id AND g.deleted_at IS NULL
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query line genres")
		return fmt.Errorf("failed to query line genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lg model.LineGenre
		if err := rows.Scan(&lg.GenreID, &lg.GenreName, &lg.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan line genre row")
			return fmt.Errorf("failed to scan line genre: %w", err)
		}
		if err := fn(lg); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating line genre rows")
		return fmt.Errorf("error iterating line genres: %w", err)
	}

	return nil
}
