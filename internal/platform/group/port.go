package group

import "context"

// SnapshotSource reads group state from the contract system.
// Implementations decode contract read-call results into Group snapshots.
type SnapshotSource interface {
	// GroupsByUser returns the addresses of all groups the user belongs to
	GroupsByUser(ctx context.Context, userAddress string) ([]string, error)

	// FetchGroup reads and decodes one group's full snapshot.
	// Contract reads are performed on behalf of userAddress, since group
	// contracts restrict reads to participants.
	FetchGroup(ctx context.Context, groupAddress, userAddress string) (*Group, error)
}

// SnapshotCache stores decoded group snapshots per user address.
// The cache is owned by the caller layer; the settlement core never sees it.
type SnapshotCache interface {
	// Get returns the cached snapshot list for a user, with a hit indicator
	Get(ctx context.Context, userAddress string) ([]Group, bool, error)

	// Set replaces the cached snapshot list for a user
	Set(ctx context.Context, userAddress string, groups []Group) error

	// Invalidate drops the cached snapshot list for a user
	Invalidate(ctx context.Context, userAddress string) error
}
