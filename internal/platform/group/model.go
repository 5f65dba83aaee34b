package group

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a group contract
type Status string

const (
	StatusLive       Status = "Live"        // Expenses can still be added and validated
	StatusToBeClosed Status = "To Be Closed" // Settlement phase, debtors must pay
	StatusClosed     Status = "Closed"      // All balances settled, group archived
)

// StatusFromContractState maps the on-chain group state enum to a Status
func StatusFromContractState(state uint8) Status {
	switch state {
	case 0:
		return StatusLive
	case 1:
		return StatusToBeClosed
	default:
		return StatusClosed
	}
}

// ValidationStatus represents a participant's acknowledgment of an expense share
type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "Pending"
	ValidationValidated ValidationStatus = "Validated"
	ValidationRejected  ValidationStatus = "Rejected"
)

// IsValid checks if the validation status is valid
func (s ValidationStatus) IsValid() bool {
	switch s {
	case ValidationPending, ValidationValidated, ValidationRejected:
		return true
	}
	return false
}

// Participant represents one member of a group, identified by wallet address
type Participant struct {
	ID            string          `json:"id"`             // Wallet address, unique within a group
	WalletAddress string          `json:"wallet_address"` // Same as ID, kept explicit for consumers
	ShortName     string          `json:"short_name"`     // Truncated address (0x1234...abcd)
	Pseudo        string          `json:"pseudo"`         // Display name, not required to be unique
	Balance       decimal.Decimal `json:"balance"`        // On-chain stablecoin balance for this group
}

// Validation is one participant's share acknowledgment on an expense
type Validation struct {
	ParticipantID string           `json:"participant_id"`
	Status        ValidationStatus `json:"status"`
}

// Expense represents a single group cost fronted by one participant.
// The validations set defines exactly which participants owe a share;
// a participant absent from it owes nothing for this expense.
type Expense struct {
	ID             string          `json:"id"` // <group address>-<index>, unique within a group
	Label          string          `json:"label"`
	Amount         decimal.Decimal `json:"amount"` // Non-negative, 2-decimal currency; 0 = void placeholder
	PaidBy         string          `json:"paid_by"`
	Date           time.Time       `json:"date"`
	Validations    []Validation    `json:"validations"`
	FullyValidated bool            `json:"fully_validated"`
}

// Group is an in-memory snapshot of one group contract's financial state
type Group struct {
	ID           string        `json:"id"` // Group contract address
	Name         string        `json:"name"`
	Status       Status        `json:"status"`
	Creator      string        `json:"creator"`
	CreatedAt    time.Time     `json:"created_at"`
	Participants []Participant `json:"participants"`
	Expenses     []Expense     `json:"expenses"`
}

// RealExpenseCount returns the number of expenses with a non-zero amount.
// Zero-amount entries are contract placeholders and are not real expenses.
func (g *Group) RealExpenseCount() int {
	count := 0
	for _, e := range g.Expenses {
		if !e.Amount.IsZero() {
			count++
		}
	}
	return count
}

// AllExpensesValidated reports whether every expense has been fully validated.
// A group with no expenses is never considered validated.
func (g *Group) AllExpensesValidated() bool {
	if len(g.Expenses) == 0 {
		return false
	}
	for _, e := range g.Expenses {
		if !e.FullyValidated {
			return false
		}
	}
	return true
}

// PendingActionFor reports whether the given participant has something to do:
// an expense awaiting their validation, or an outstanding debt while the
// group is in its settlement phase.
func (g *Group) PendingActionFor(address string) bool {
	for _, e := range g.Expenses {
		for _, v := range e.Validations {
			if AddressesEqual(v.ParticipantID, address) && v.Status == ValidationPending {
				return true
			}
		}
	}

	if g.Status == StatusToBeClosed {
		for _, p := range g.Participants {
			if AddressesEqual(p.WalletAddress, address) && p.Balance.IsNegative() {
				return true
			}
		}
	}

	return false
}

// FindParticipant returns the participant with the given address, if any
func (g *Group) FindParticipant(address string) (Participant, bool) {
	for _, p := range g.Participants {
		if AddressesEqual(p.ID, address) {
			return p, true
		}
	}
	return Participant{}, false
}

// NewParticipant builds a Participant from its on-chain fields
func NewParticipant(walletAddress, pseudo string, balance decimal.Decimal) Participant {
	return Participant{
		ID:            walletAddress,
		WalletAddress: walletAddress,
		ShortName:     ShortenAddress(walletAddress),
		Pseudo:        pseudo,
		Balance:       balance,
	}
}

// ShortenAddress renders a wallet address as 0x1234...abcd for display
func ShortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
