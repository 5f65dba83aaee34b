package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/thomasfevre/chill-split/internal/platform/group"
)

// epsilon is the settlement dust threshold: balances within a cent of zero
// are considered settled.
var epsilon = decimal.RequireFromString("0.01")

// Calculate computes the settlement summary for a group snapshot.
//
// It aggregates one net balance per participant (amount paid minus amount
// owed) and then derives the transfer list that closes all balances. The
// share of an expense is amount / len(validations): only participants tagged
// in an expense's validations owe a part of it, whatever the validation
// status. An expense with no validations credits its payer in full and is
// owed by nobody.
//
// Malformed input never aborts the computation; inconsistencies are reported
// through Summary.Warnings.
func Calculate(g *group.Group) *Summary {
	totalExpenses := decimal.Zero
	for _, e := range g.Expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}

	// Guard the empty group: a defined zero beats a division by zero.
	avgShare := decimal.Zero
	if n := len(g.Participants); n > 0 {
		avgShare = totalExpenses.Div(decimal.NewFromInt(int64(n)))
	}

	balances := aggregateBalances(g)
	transactions, residual := optimalTransactions(balances)

	var warnings []Warning
	for _, e := range g.Expenses {
		if _, ok := g.FindParticipant(e.PaidBy); !ok {
			warnings = append(warnings, Warning{
				Code:    WarnUnknownPayer,
				Message: fmt.Sprintf("expense %s paid by unknown participant %s", e.ID, e.PaidBy),
			})
		}
	}
	if residual.GreaterThanOrEqual(epsilon) {
		warnings = append(warnings, Warning{
			Code:    WarnResidualImbalance,
			Message: fmt.Sprintf("balances do not sum to zero: %s left unsettled", residual.StringFixed(2)),
		})
	}

	return &Summary{
		TotalExpenses:       totalExpenses,
		AvgShare:            avgShare,
		ParticipantBalances: balances,
		Transactions:        transactions,
		Warnings:            warnings,
	}
}

// aggregateBalances produces one ParticipantBalance per participant, in the
// same order as the snapshot's participant list.
func aggregateBalances(g *group.Group) []ParticipantBalance {
	balances := make([]ParticipantBalance, 0, len(g.Participants))

	for _, p := range g.Participants {
		paid := decimal.Zero
		owes := decimal.Zero

		for _, e := range g.Expenses {
			if group.AddressesEqual(e.PaidBy, p.ID) {
				paid = paid.Add(e.Amount)
			}

			if len(e.Validations) == 0 {
				continue
			}
			for _, v := range e.Validations {
				if group.AddressesEqual(v.ParticipantID, p.ID) {
					share := e.Amount.Div(decimal.NewFromInt(int64(len(e.Validations))))
					owes = owes.Add(share)
					break
				}
			}
		}

		balances = append(balances, ParticipantBalance{
			ParticipantID: p.ID,
			Pseudo:        p.Pseudo,
			Paid:          paid,
			Owes:          owes,
			NetBalance:    paid.Sub(owes),
		})
	}

	return balances
}
