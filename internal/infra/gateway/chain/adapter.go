package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/thomasfevre/chill-split/internal/platform/group"
	"github.com/thomasfevre/chill-split/pkg/money"
)

// Contract read signatures. The factory tracks group membership; each group
// contract holds its own participants, expenses, and balances.
const (
	sigGroupsByUser    = "getGroupsByUser(address)"
	sigGroupDetails    = "getGroupDetails()"
	sigGetParticipants = "getParticipants()"
	sigExpenseCount    = "expenseCount()"
	sigGetExpense      = "getExpense(uint256)"
)

// SnapshotAdapter implements group.SnapshotSource over the JSON-RPC client,
// decoding factory and group contract reads into group snapshots.
type SnapshotAdapter struct {
	client         *Client
	factoryAddress string
}

// NewSnapshotAdapter creates a new snapshot adapter
func NewSnapshotAdapter(client *Client, factoryAddress string) *SnapshotAdapter {
	return &SnapshotAdapter{
		client:         client,
		factoryAddress: factoryAddress,
	}
}

// GroupsByUser returns the addresses of all groups the user belongs to,
// from the factory registry
func (a *SnapshotAdapter) GroupsByUser(ctx context.Context, userAddress string) ([]string, error) {
	arg, err := encodeAddress(userAddress)
	if err != nil {
		return nil, err
	}

	result, err := a.client.Call(ctx, "", a.factoryAddress, encodeCall(sigGroupsByUser, arg))
	if err != nil {
		return nil, fmt.Errorf("getGroupsByUser failed: %w", err)
	}

	r, err := newABIReader(result)
	if err != nil {
		return nil, err
	}

	offset, err := r.offset(0, 0)
	if err != nil {
		return nil, err
	}
	return r.addressArrayAt(offset)
}

// FetchGroup reads and decodes one group's full snapshot. Reads are issued
// with the user as caller because group contracts gate participant data.
func (a *SnapshotAdapter) FetchGroup(ctx context.Context, groupAddress, userAddress string) (*group.Group, error) {
	name, creator, state, createdAt, err := a.groupDetails(ctx, groupAddress)
	if err != nil {
		return nil, err
	}

	participants, err := a.participants(ctx, groupAddress, userAddress)
	if err != nil {
		return nil, err
	}

	expenses, err := a.expenses(ctx, groupAddress, userAddress)
	if err != nil {
		return nil, err
	}

	return &group.Group{
		ID:           groupAddress,
		Name:         name,
		Status:       group.StatusFromContractState(state),
		Creator:      creator,
		CreatedAt:    createdAt,
		Participants: participants,
		Expenses:     expenses,
	}, nil
}

// groupDetails decodes getGroupDetails(): (string name, address creator,
// uint8 state, uint256 createdAt)
func (a *SnapshotAdapter) groupDetails(ctx context.Context, groupAddress string) (string, string, uint8, time.Time, error) {
	result, err := a.client.Call(ctx, "", groupAddress, encodeCall(sigGroupDetails))
	if err != nil {
		return "", "", 0, time.Time{}, fmt.Errorf("getGroupDetails failed: %w", err)
	}

	r, err := newABIReader(result)
	if err != nil {
		return "", "", 0, time.Time{}, err
	}

	nameOffset, err := r.offset(0, 0)
	if err != nil {
		return "", "", 0, time.Time{}, err
	}
	name, err := r.stringAt(nameOffset)
	if err != nil {
		return "", "", 0, time.Time{}, err
	}

	creator, err := r.address(1 * wordSize)
	if err != nil {
		return "", "", 0, time.Time{}, err
	}

	state, err := r.uint256(2 * wordSize)
	if err != nil {
		return "", "", 0, time.Time{}, err
	}

	createdAt, err := r.uint256(3 * wordSize)
	if err != nil {
		return "", "", 0, time.Time{}, err
	}

	return name, creator, uint8(state.Uint64()), time.Unix(createdAt.Int64(), 0).UTC(), nil
}

// participants decodes getParticipants(): (address[] participants,
// string[] usernames, int256[] balances). Balances are signed cents.
func (a *SnapshotAdapter) participants(ctx context.Context, groupAddress, userAddress string) ([]group.Participant, error) {
	result, err := a.client.Call(ctx, userAddress, groupAddress, encodeCall(sigGetParticipants))
	if err != nil {
		return nil, fmt.Errorf("getParticipants failed: %w", err)
	}

	r, err := newABIReader(result)
	if err != nil {
		return nil, err
	}

	addrOffset, err := r.offset(0, 0)
	if err != nil {
		return nil, err
	}
	addresses, err := r.addressArrayAt(addrOffset)
	if err != nil {
		return nil, err
	}

	nameOffset, err := r.offset(1*wordSize, 0)
	if err != nil {
		return nil, err
	}
	usernames, err := r.stringArrayAt(nameOffset)
	if err != nil {
		return nil, err
	}

	balanceOffset, err := r.offset(2*wordSize, 0)
	if err != nil {
		return nil, err
	}
	balances, err := r.intArrayAt(balanceOffset)
	if err != nil {
		return nil, err
	}

	if len(usernames) != len(addresses) || len(balances) != len(addresses) {
		return nil, fmt.Errorf("getParticipants arrays disagree: %d addresses, %d usernames, %d balances",
			len(addresses), len(usernames), len(balances))
	}

	participants := make([]group.Participant, 0, len(addresses))
	for i, addr := range addresses {
		participants = append(participants,
			group.NewParticipant(addr, usernames[i], money.FromBigCents(balances[i])))
	}
	return participants, nil
}

// expenses reads expenseCount() then decodes each getExpense(i):
// (string label, uint256 amount, address payer, address[] validators,
// uint8[] validationsStatus, bool fullyValidated, uint256 timestamp)
func (a *SnapshotAdapter) expenses(ctx context.Context, groupAddress, userAddress string) ([]group.Expense, error) {
	countResult, err := a.client.Call(ctx, userAddress, groupAddress, encodeCall(sigExpenseCount))
	if err != nil {
		return nil, fmt.Errorf("expenseCount failed: %w", err)
	}
	cr, err := newABIReader(countResult)
	if err != nil {
		return nil, err
	}
	count, err := cr.uint256(0)
	if err != nil {
		return nil, err
	}

	n := int(count.Int64())
	expenses := make([]group.Expense, 0, n)
	for i := 0; i < n; i++ {
		e, err := a.expense(ctx, groupAddress, userAddress, i)
		if err != nil {
			return nil, fmt.Errorf("getExpense(%d) failed: %w", i, err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, nil
}

func (a *SnapshotAdapter) expense(ctx context.Context, groupAddress, userAddress string, index int) (*group.Expense, error) {
	result, err := a.client.Call(ctx, userAddress, groupAddress,
		encodeCall(sigGetExpense, encodeUint64(uint64(index))))
	if err != nil {
		return nil, err
	}

	r, err := newABIReader(result)
	if err != nil {
		return nil, err
	}

	labelOffset, err := r.offset(0, 0)
	if err != nil {
		return nil, err
	}
	label, err := r.stringAt(labelOffset)
	if err != nil {
		return nil, err
	}

	amount, err := r.uint256(1 * wordSize)
	if err != nil {
		return nil, err
	}

	payer, err := r.address(2 * wordSize)
	if err != nil {
		return nil, err
	}

	validatorsOffset, err := r.offset(3*wordSize, 0)
	if err != nil {
		return nil, err
	}
	validators, err := r.addressArrayAt(validatorsOffset)
	if err != nil {
		return nil, err
	}

	statusOffset, err := r.offset(4*wordSize, 0)
	if err != nil {
		return nil, err
	}
	statuses, err := r.intArrayAt(statusOffset)
	if err != nil {
		return nil, err
	}

	fullyValidated, err := r.boolean(5 * wordSize)
	if err != nil {
		return nil, err
	}

	timestamp, err := r.uint256(6 * wordSize)
	if err != nil {
		return nil, err
	}

	if len(statuses) != len(validators) {
		return nil, fmt.Errorf("expense arrays disagree: %d validators, %d statuses", len(validators), len(statuses))
	}

	validations := make([]group.Validation, 0, len(validators))
	for i, v := range validators {
		validations = append(validations, group.Validation{
			ParticipantID: v,
			Status:        validationStatusFromCode(statuses[i].Uint64()),
		})
	}

	return &group.Expense{
		ID:             fmt.Sprintf("%s-%d", groupAddress, index),
		Label:          label,
		Amount:         money.FromBigCents(amount),
		PaidBy:         payer,
		Date:           time.Unix(timestamp.Int64(), 0).UTC(),
		Validations:    validations,
		FullyValidated: fullyValidated,
	}, nil
}

// validationStatusFromCode maps the contract's uint8 validation code
func validationStatusFromCode(code uint64) group.ValidationStatus {
	switch code {
	case 1:
		return group.ValidationValidated
	case 2:
		return group.ValidationRejected
	default:
		return group.ValidationPending
	}
}
