package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookshop/internal/model"
	"bookshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// conflictBackoff spaces out re-validation attempts after a
	// concurrent stock conflict.
	conflictBackoff = 25 * time.Millisecond
)

// orderService implements OrderService. It is the transaction coordinator:
// every mutating path in the system goes through Create.
type orderService struct {
	orderRepo      repository.OrderRepository
	catalogRepo    repository.CatalogRepository
	userRepo       repository.UserRepository
	commitAttempts int
	commitTimeout  time.Duration
	logger         zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	catalogRepo repository.CatalogRepository,
	userRepo repository.UserRepository,
	commitAttempts int,
	commitTimeout time.Duration,
	logger zerolog.Logger,
) OrderService {
	if commitAttempts < 1 {
		commitAttempts = 1
	}
	return &orderService{
		orderRepo:      orderRepo,
		catalogRepo:    catalogRepo,
		userRepo:       userRepo,
		commitAttempts: commitAttempts,
		commitTimeout:  commitTimeout,
		logger:         logger.With().Str("service", "order").Logger(),
	}
}

// Create validates the request line by line and commits the order, its lines
// and the stock decrements atomically. The catalogue lookup and stock check
// run again on every commit attempt so a retry after a concurrent conflict
// never works from stale stock.
func (s *orderService) Create(ctx context.Context, req *model.OrderRequest, idempotencyKey string) (*model.OrderDetail, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		existing, err := s.orderRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if existing != nil {
			s.logger.Info().
				Str("order_id", existing.ID.String()).
				Msg("idempotent replay, returning committed order")
			return existing, nil
		}
	}

	user, err := s.userRepo.FindUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up purchaser: %w", err)
	}
	if user == nil {
		s.logger.Warn().Str("user_id", req.UserID.String()).Msg("purchaser not found")
		return nil, model.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.commitTimeout)
	defer cancel()

	var orderID uuid.UUID
	backoff := retry.WithMaxRetries(uint64(s.commitAttempts-1), retry.NewConstant(conflictBackoff))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		books, err := s.resolveBooks(ctx, req)
		if err != nil {
			return err
		}

		order, lines := s.buildOrder(req, books, idempotencyKey)
		if err := s.orderRepo.Commit(ctx, order, lines); err != nil {
			if errors.Is(err, model.ErrStockConflict) {
				s.logger.Warn().
					Str("order_id", order.ID.String()).
					Msg("concurrent stock conflict, re-validating")
				return retry.RetryableError(err)
			}
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrIdempotentReplay) && idempotencyKey != "" {
			// A concurrent request with the same key won the commit.
			existing, lookupErr := s.orderRepo.GetByIdempotencyKey(ctx, idempotencyKey)
			if lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	detail, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back committed order: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("user_id", req.UserID.String()).
		Int("line_count", len(req.Lines)).
		Msg("order created")

	return detail, nil
}

// validateRequest covers the checks that need no storage access: shape,
// quantities and duplicate lines. First failure wins.
func (s *orderService) validateRequest(req *model.OrderRequest) error {
	if req == nil || len(req.Lines) == 0 {
		return model.ErrEmptyOrder
	}

	if req.UserID == uuid.Nil {
		return model.ErrInvalidUserID
	}

	for i, line := range req.Lines {
		if line.BookID == uuid.Nil {
			return model.ErrInvalidBookID
		}
		if line.Quantity <= 0 {
			s.logger.Warn().
				Int("line_index", i).
				Str("book_id", line.BookID.String()).
				Int("quantity", line.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(req.Lines))
	for _, line := range req.Lines {
		if _, dup := seen[line.BookID]; dup {
			return model.ErrDuplicateLineItem
		}
		seen[line.BookID] = struct{}{}
	}

	return nil
}

// resolveBooks batch-loads the requested books and checks stock sufficiency
// against the current quantities.
func (s *orderService) resolveBooks(ctx context.Context, req *model.OrderRequest) (map[uuid.UUID]model.Book, error) {
	ids := make([]uuid.UUID, len(req.Lines))
	for i, line := range req.Lines {
		ids[i] = line.BookID
	}

	books, err := s.catalogRepo.FindBooksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up books: %w", err)
	}

	byID := make(map[uuid.UUID]model.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		s.logger.Warn().Int("missing_count", len(missing)).Msg("books not found")
		return nil, &model.BookNotFoundError{BookIDs: missing}
	}

	for _, line := range req.Lines {
		book := byID[line.BookID]
		if line.Quantity > book.StockQuantity {
			s.logger.Warn().
				Str("book_id", book.ID.String()).
				Int("available", book.StockQuantity).
				Int("requested", line.Quantity).
				Msg("insufficient stock")
			return nil, &model.InsufficientStockError{
				BookID:    book.ID,
				Available: book.StockQuantity,
				Requested: line.Quantity,
			}
		}
	}

	return byID, nil
}

// buildOrder snapshots the current book prices into the order lines and
// derives the order total from them.
func (s *orderService) buildOrder(req *model.OrderRequest, books map[uuid.UUID]model.Book, idempotencyKey string) (*model.Order, []model.OrderLine) {
	orderID := uuid.New()
	total := decimal.Zero

	lines := make([]model.OrderLine, len(req.Lines))
	for i, line := range req.Lines {
		book := books[line.BookID]
		lines[i] = model.OrderLine{
			ID:        uuid.New(),
			OrderID:   orderID,
			BookID:    line.BookID,
			UnitPrice: book.Price,
			Quantity:  line.Quantity,
		}
		total = total.Add(lines[i].Subtotal())
	}

	order := &model.Order{
		ID:         orderID,
		UserID:     req.UserID,
		TotalPrice: total,
		CreatedAt:  time.Now().UTC(),
	}
	if idempotencyKey != "" {
		order.IdempotencyKey = &idempotencyKey
	}

	return order, lines
}

// GetByID retrieves an order with its lines and catalogue data.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	detail, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if detail == nil {
		return nil, model.ErrOrderNotFound
	}
	return detail, nil
}

// List retrieves a page of order summaries, newest first.
func (s *orderService) List(ctx context.Context, page, size int) ([]model.OrderSummary, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	orders, err := s.orderRepo.List(ctx, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []model.OrderSummary{}
	}
	return orders, nil
}
