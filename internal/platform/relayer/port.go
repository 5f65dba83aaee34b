package relayer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists the sponsorship ledger
type Store interface {
	// Create inserts a new sponsorship record
	Create(ctx context.Context, s *Sponsorship) error

	// UpdateStatus sets the status and transaction hash of a sponsorship
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, txHash string) error

	// CountSince counts a user's sponsorships created at or after the
	// given time, regardless of status
	CountSince(ctx context.Context, userAddress string, since time.Time) (int, error)

	// ListByUser returns a user's most recent sponsorships
	ListByUser(ctx context.Context, userAddress string, limit int) ([]*Sponsorship, error)
}

// Submitter broadcasts pre-signed transactions and waits for their outcome
type Submitter interface {
	// Submit broadcasts a signed transaction and returns its hash
	Submit(ctx context.Context, signedTx string) (string, error)

	// Confirm blocks until the transaction is mined and reports whether
	// it executed without reverting
	Confirm(ctx context.Context, txHash string) (bool, error)
}
