package settlement

import (
	"sort"

	"github.com/shopspring/decimal"
)

// party is a mutable working copy of one side of the settlement.
// The aggregator's output stays untouched; only these copies are decremented.
type party struct {
	id        string
	pseudo    string
	remaining decimal.Decimal // Always positive
}

// optimalTransactions derives the transfer list that settles all balances,
// pairing the largest remaining debtor with the largest remaining creditor
// until one side is exhausted. The greedy pairing is a standard practical
// approximation: the truly minimal transaction count is NP-hard to find, but
// this is deterministic and at worst debtors+creditors-1 transfers.
//
// Both parties are decremented by the rounded amount that is emitted, so the
// recorded transfers and the working balances always agree. It also returns
// the residual left on whichever side did not empty, which is non-zero only
// when the input balances do not sum to zero.
func optimalTransactions(balances []ParticipantBalance) ([]Transaction, decimal.Decimal) {
	var debtors, creditors []party

	for _, b := range balances {
		switch {
		case b.NetBalance.LessThanOrEqual(epsilon.Neg()):
			debtors = append(debtors, party{id: b.ParticipantID, pseudo: b.Pseudo, remaining: b.NetBalance.Abs()})
		case b.NetBalance.GreaterThanOrEqual(epsilon):
			creditors = append(creditors, party{id: b.ParticipantID, pseudo: b.Pseudo, remaining: b.NetBalance})
		}
	}

	// Largest amounts first; stable to keep snapshot order among ties.
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].remaining.GreaterThan(debtors[j].remaining)
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].remaining.GreaterThan(creditors[j].remaining)
	})

	transactions := []Transaction{}

	for len(debtors) > 0 && len(creditors) > 0 {
		debtor := &debtors[0]
		creditor := &creditors[0]

		amount := decimal.Min(debtor.remaining, creditor.remaining).Round(2)

		if amount.IsPositive() {
			transactions = append(transactions, Transaction{
				FromID:   debtor.id,
				FromName: debtor.pseudo,
				ToID:     creditor.id,
				ToName:   creditor.pseudo,
				Amount:   amount,
			})
		}

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		// The smaller party always zeroes out, so removal only ever
		// happens at the head and no re-sort is needed.
		if debtor.remaining.Abs().LessThan(epsilon) {
			debtors = debtors[1:]
		}
		if creditor.remaining.Abs().LessThan(epsilon) {
			creditors = creditors[1:]
		}
	}

	residual := decimal.Zero
	for _, d := range debtors {
		residual = residual.Add(d.remaining)
	}
	for _, c := range creditors {
		residual = residual.Add(c.remaining)
	}

	return transactions, residual
}
