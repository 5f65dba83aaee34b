package relayer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/thomasfevre/chill-split/internal/platform/group"
	"github.com/thomasfevre/chill-split/pkg/logger"
)

const (
	// sponsorBurst lets a user chain a few actions (authorize then execute)
	// without tripping the limiter
	sponsorBurst = 5

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service pays gas for user transactions within a per-address hourly quota.
// Every sponsorship is recorded in the ledger before broadcast.
type Service struct {
	store        Store
	submitter    Submitter
	quotaPerHour int
	log          *logger.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewService creates a new relayer service
func NewService(store Store, submitter Submitter, quotaPerHour int, log *logger.Logger) *Service {
	return &Service{
		store:        store,
		submitter:    submitter,
		quotaPerHour: quotaPerHour,
		log:          log.WithField("component", "relayer"),
		limiters:     make(map[string]*rate.Limiter),
	}
}

// limiter returns the per-address rate limiter, creating it on first use
func (s *Service) limiter(userAddress string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := group.NormalizeAddress(userAddress)
	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Hour/time.Duration(s.quotaPerHour)), sponsorBurst)
		s.limiters[key] = l
	}
	return l
}

// Sponsor records, broadcasts, and confirms one gas-sponsored transaction
// on behalf of a user
func (s *Service) Sponsor(ctx context.Context, userAddress string, kind Kind, signedTx string) (*Sponsorship, error) {
	if _, err := group.ValidateAddress(userAddress); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if signedTx == "" {
		return nil, ErrEmptyTransaction
	}

	// The ledger stores normalized addresses; every store call must use the
	// same form or a checksummed session wallet bypasses the hourly quota
	addr := group.NormalizeAddress(userAddress)

	// In-memory limiter catches rapid fire; the ledger count enforces the
	// hourly quota across restarts
	if !s.limiter(addr).Allow() {
		return nil, ErrQuotaExceeded
	}

	count, err := s.store.CountSince(ctx, addr, time.Now().Add(-time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to check sponsorship quota: %w", err)
	}
	if count >= s.quotaPerHour {
		return nil, ErrQuotaExceeded
	}

	sponsorship := &Sponsorship{
		UserAddress: addr,
		Kind:        kind,
		Status:      StatusPending,
	}
	if err := s.store.Create(ctx, sponsorship); err != nil {
		return nil, fmt.Errorf("failed to record sponsorship: %w", err)
	}

	log := s.log.WithField("sponsorship_id", sponsorship.ID.String())

	txHash, err := s.submitter.Submit(ctx, signedTx)
	if err != nil {
		log.Error("sponsored broadcast failed", "error", err)
		if updateErr := s.store.UpdateStatus(ctx, sponsorship.ID, StatusFailed, ""); updateErr != nil {
			log.Error("failed to mark sponsorship failed", "error", updateErr)
		}
		sponsorship.Status = StatusFailed
		return nil, fmt.Errorf("failed to broadcast sponsored transaction: %w", err)
	}

	sponsorship.TxHash = txHash
	log = log.WithField("tx_hash", txHash)

	succeeded, err := s.submitter.Confirm(ctx, txHash)
	if err != nil {
		// Broadcast went through; the transaction may still mine later.
		// Keep the record pending with its hash.
		log.Error("sponsored confirmation failed", "error", err)
		if updateErr := s.store.UpdateStatus(ctx, sponsorship.ID, StatusPending, txHash); updateErr != nil {
			log.Error("failed to record transaction hash", "error", updateErr)
		}
		return nil, fmt.Errorf("failed to confirm sponsored transaction: %w", err)
	}

	if !succeeded {
		log.Warn("sponsored transaction reverted")
		if updateErr := s.store.UpdateStatus(ctx, sponsorship.ID, StatusFailed, txHash); updateErr != nil {
			log.Error("failed to mark sponsorship failed", "error", updateErr)
		}
		sponsorship.Status = StatusFailed
		return sponsorship, ErrTransactionReverted
	}

	if err := s.store.UpdateStatus(ctx, sponsorship.ID, StatusConfirmed, txHash); err != nil {
		return nil, fmt.Errorf("failed to confirm sponsorship record: %w", err)
	}
	sponsorship.Status = StatusConfirmed

	log.Info("transaction sponsored", "kind", string(kind))
	return sponsorship, nil
}

// History returns a user's most recent sponsorships
func (s *Service) History(ctx context.Context, userAddress string, limit int) ([]*Sponsorship, error) {
	if _, err := group.ValidateAddress(userAddress); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	return s.store.ListByUser(ctx, group.NormalizeAddress(userAddress), limit)
}
