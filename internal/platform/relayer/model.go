package relayer

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies what a sponsored transaction does
type Kind string

const (
	// KindAuthorization is an EIP-7702 style authorization the user signed
	// so the relayer can cover gas for their smart account
	KindAuthorization Kind = "authorization"

	// KindExecution is a regular signed contract call (add expense,
	// validate, reimburse) whose gas the relayer covers
	KindExecution Kind = "execution"
)

// IsValid checks if the kind is a known value
func (k Kind) IsValid() bool {
	return k == KindAuthorization || k == KindExecution
}

// Status represents the lifecycle of a sponsorship
type Status string

const (
	StatusPending   Status = "pending"   // Recorded, not yet broadcast or mined
	StatusConfirmed Status = "confirmed" // Mined successfully
	StatusFailed    Status = "failed"    // Broadcast failed or transaction reverted
)

// Sponsorship is one gas-sponsored transaction submitted on behalf of a user
type Sponsorship struct {
	ID          uuid.UUID `json:"id"`
	UserAddress string    `json:"user_address"`
	Kind        Kind      `json:"kind"`
	TxHash      string    `json:"tx_hash,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
