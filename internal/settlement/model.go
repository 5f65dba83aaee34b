// Package settlement computes group settlements: it aggregates per-participant
// net balances from a group snapshot and derives a minimal set of transfers
// that brings every balance back to zero.
//
// The package is pure computation. It performs no I/O, holds no state between
// calls, and never mutates its input; concurrent calls over the same snapshot
// are safe and yield identical results.
package settlement

import "github.com/shopspring/decimal"

// WarningCode classifies a non-fatal data-integrity finding
type WarningCode string

const (
	// WarnUnknownPayer flags an expense whose payer is not a group participant.
	// The amount is still counted into the total but credits nobody.
	WarnUnknownPayer WarningCode = "unknown_payer"

	// WarnResidualImbalance flags a snapshot whose balances do not sum to zero:
	// one side of the settlement ran out before the other was made whole.
	WarnResidualImbalance WarningCode = "residual_imbalance"
)

// Warning reports a tolerated inconsistency in the input snapshot.
// Warnings never abort the computation; callers decide whether to surface them.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// ParticipantBalance is the aggregate financial position of one participant
// for a single settlement computation. It is derived, never persisted, and
// immutable once returned.
type ParticipantBalance struct {
	ParticipantID string          `json:"participant_id"`
	Pseudo        string          `json:"pseudo"`
	Paid          decimal.Decimal `json:"paid"`        // Sum of expenses this participant fronted
	Owes          decimal.Decimal `json:"owes"`        // Sum of this participant's shares across all expenses
	NetBalance    decimal.Decimal `json:"net_balance"` // Paid - Owes: positive = creditor, negative = debtor
}

// Transaction is one proposed debtor-to-creditor transfer
type Transaction struct {
	FromID   string          `json:"from_id"`
	FromName string          `json:"from_name"`
	ToID     string          `json:"to_id"`
	ToName   string          `json:"to_name"`
	Amount   decimal.Decimal `json:"amount"` // Always positive, rounded to 2 decimals
}

// Summary is the full result of one settlement computation
type Summary struct {
	TotalExpenses       decimal.Decimal      `json:"total_expenses"`
	AvgShare            decimal.Decimal      `json:"avg_share"`
	ParticipantBalances []ParticipantBalance `json:"participant_balances"`
	Transactions        []Transaction        `json:"transactions"`
	Warnings            []Warning            `json:"warnings,omitempty"`
}
