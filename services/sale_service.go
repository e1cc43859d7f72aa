package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories"
)

// IdempotencyStore remembers sale attempts by client-supplied key. The
// fingerprint identifies the request the key was first used for.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key, fingerprint string) (*models.SaleAttempt, bool, error)
	Complete(ctx context.Context, key, fingerprint string, receipt models.SaleReceipt) error
	MarkPartial(ctx context.Context, key, fingerprint, detail string) error
	Release(ctx context.Context, key string) error
}

// SaleNotifier is told about committed sales. Implementations must not block.
type SaleNotifier interface {
	SaleRecorded(receipt models.SaleReceipt)
	LowStock(branchID string, item models.LowStockItem)
}

type SaleService struct {
	branches     repositories.BranchRepository
	items        repositories.ItemRepository
	sales        repositories.SaleRepository
	idempotency  IdempotencyStore
	notifier     SaleNotifier
	lowThreshold int
	now          func() time.Time
}

func NewSaleService(
	branches repositories.BranchRepository,
	items repositories.ItemRepository,
	sales repositories.SaleRepository,
	idempotency IdempotencyStore,
	notifier SaleNotifier,
	lowThreshold int,
) *SaleService {
	return &SaleService{
		branches:     branches,
		items:        items,
		sales:        sales,
		idempotency:  idempotency,
		notifier:     notifier,
		lowThreshold: lowThreshold,
		now:          time.Now,
	}
}

// RecordSale decrements the item's stock by quantity and appends one sale
// to the branch ledger. A non-empty idempotencyKey makes retries safe.
func (s *SaleService) RecordSale(ctx context.Context, branchID, categoryName, itemID, workerID string, quantity int, idempotencyKey string) (*models.SaleReceipt, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if idempotencyKey == "" || s.idempotency == nil {
		return s.recordSale(ctx, branchID, categoryName, itemID, workerID, quantity)
	}

	key := attemptKey(workerID, idempotencyKey)
	fingerprint := saleFingerprint(branchID, categoryName, itemID, quantity)
	attempt, reserved, err := s.idempotency.Reserve(ctx, key, fingerprint)
	if err != nil {
		return nil, err
	}
	if !reserved {
		if attempt.Fingerprint != fingerprint {
			return nil, ErrIdempotencyKeyReused
		}
		return replayAttempt(attempt)
	}

	receipt, err := s.recordSale(ctx, branchID, categoryName, itemID, workerID, quantity)
	// Bookkeeping uses a fresh context so a cancelled request still
	// settles its key.
	bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var partial *PartialFailureError
	switch {
	case err == nil:
		if cerr := s.idempotency.Complete(bgCtx, key, fingerprint, *receipt); cerr != nil {
			log.Warn().Err(cerr).Str("key", idempotencyKey).Msg("failed to store sale receipt")
		}
	case errors.As(err, &partial):
		if merr := s.idempotency.MarkPartial(bgCtx, key, fingerprint, partial.Error()); merr != nil {
			log.Error().Err(merr).Str("key", idempotencyKey).Msg("failed to mark sale attempt partial")
		}
	default:
		// Nothing took effect, so the key may be retried.
		if rerr := s.idempotency.Release(bgCtx, key); rerr != nil {
			log.Warn().Err(rerr).Str("key", idempotencyKey).Msg("failed to release sale attempt")
		}
	}
	return receipt, err
}

// attemptKey scopes a client key to the worker that sent it.
func attemptKey(workerID, key string) string {
	return workerID + ":" + key
}

func saleFingerprint(branchID, category, itemID string, quantity int) string {
	return fmt.Sprintf("%s/%s/%s/%d", branchID, strings.ToLower(strings.TrimSpace(category)), itemID, quantity)
}

func replayAttempt(attempt *models.SaleAttempt) (*models.SaleReceipt, error) {
	switch attempt.State {
	case models.AttemptDone:
		if attempt.Receipt != nil {
			return attempt.Receipt, nil
		}
	case models.AttemptPartial:
		return nil, &PartialFailureError{
			Operation: "recordSale",
			Completed: []string{"decrementStock"},
			Failed:    "appendSale",
			Err:       errors.New(attempt.Detail),
		}
	}
	return nil, ErrSaleInProgress
}

func (s *SaleService) recordSale(ctx context.Context, branchID, categoryName, itemID, workerID string, quantity int) (*models.SaleReceipt, error) {
	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	category, ok := branch.Category(categoryName)
	if !ok {
		return nil, fmt.Errorf("category %q: %w", categoryName, ErrNotFound)
	}

	item, err := s.items.FindByID(ctx, branchID, category.Name, itemID)
	if err != nil {
		return nil, err
	}
	if quantity > item.Stock {
		return nil, ErrInvalidQuantity
	}

	newStock, err := s.items.DecrementStock(ctx, branchID, category.Name, itemID, quantity)
	if errors.Is(err, repositories.ErrInsufficientStock) {
		// Another sale won the race for the remaining units.
		return nil, ErrInvalidQuantity
	}
	if err != nil {
		return nil, err
	}

	sale := &models.Sale{
		ID:        uuid.NewString(),
		ProductID: item.ID,
		Category:  category.Name,
		BranchID:  branchID,
		WorkerID:  workerID,
		Price:     item.Price,
		Quantity:  quantity,
		Timestamp: models.FormatTimestamp(s.now()),
	}
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, s.compensate(branchID, category.Name, itemID, quantity, err)
	}

	receipt := models.SaleReceipt{SaleID: sale.ID, Stock: newStock, Sale: *sale}
	log.Info().
		Str("branch", branchID).
		Str("item", itemID).
		Str("worker", workerID).
		Int("quantity", quantity).
		Int("stock", newStock).
		Msg("sale recorded")

	s.notify(receipt, item, newStock)
	return &receipt, nil
}

// compensate restores the units taken by a decrement whose sale could not
// be written.
func (s *SaleService) compensate(branchID, category, itemID string, quantity int, appendErr error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.items.IncrementStock(ctx, branchID, category, itemID, quantity); err != nil {
		log.Error().
			Err(err).
			AnErr("appendErr", appendErr).
			Str("branch", branchID).
			Str("item", itemID).
			Int("quantity", quantity).
			Msg("sale append failed and stock could not be restored")
		return &PartialFailureError{
			Operation: "recordSale",
			Completed: []string{"decrementStock"},
			Failed:    "appendSale",
			Err:       appendErr,
		}
	}

	log.Warn().Err(appendErr).Str("branch", branchID).Str("item", itemID).Msg("sale append failed, stock restored")
	return appendErr
}

func (s *SaleService) notify(receipt models.SaleReceipt, item *models.Item, newStock int) {
	if s.notifier == nil {
		return
	}
	s.notifier.SaleRecorded(receipt)
	if s.lowThreshold > 0 && newStock < s.lowThreshold {
		low := lowStockEntry(item)
		low.Stock = newStock
		s.notifier.LowStock(receipt.Sale.BranchID, low)
	}
}
