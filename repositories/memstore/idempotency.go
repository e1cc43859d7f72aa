package memstore

import (
	"context"
	"sync"

	"github.com/HSouheill/branchstock_backend/models"
)

// Idempotency is the in-process counterpart of the Redis attempt store.
type Idempotency struct {
	mu       sync.Mutex
	attempts map[string]models.SaleAttempt
}

func NewIdempotency() *Idempotency {
	return &Idempotency{attempts: map[string]models.SaleAttempt{}}
}

func (s *Idempotency) Reserve(_ context.Context, key, fingerprint string) (*models.SaleAttempt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attempts[key]; ok {
		return &a, false, nil
	}
	s.attempts[key] = models.SaleAttempt{State: models.AttemptPending, Fingerprint: fingerprint}
	return nil, true, nil
}

func (s *Idempotency) Complete(_ context.Context, key, fingerprint string, receipt models.SaleReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[key] = models.SaleAttempt{State: models.AttemptDone, Fingerprint: fingerprint, Receipt: &receipt}
	return nil
}

func (s *Idempotency) MarkPartial(_ context.Context, key, fingerprint, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[key] = models.SaleAttempt{State: models.AttemptPartial, Fingerprint: fingerprint, Detail: detail}
	return nil
}

func (s *Idempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, key)
	return nil
}

// State reports the stored state of key, or "" when absent.
func (s *Idempotency) State(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[key].State
}
