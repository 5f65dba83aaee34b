package group

import (
	"context"
	"fmt"
	"sort"

	"github.com/thomasfevre/chill-split/pkg/logger"
)

// Service orchestrates group snapshot fetching and caching.
// The chain is the source of truth; Redis only shortcuts repeat reads
// within the cache TTL.
type Service struct {
	source SnapshotSource
	cache  SnapshotCache
	log    *logger.Logger
}

// NewService creates a new group service
func NewService(source SnapshotSource, cache SnapshotCache, log *logger.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		log:    log.WithField("component", "group"),
	}
}

// ListGroups returns all group snapshots for a user, serving from cache
// when possible and refreshing from the chain on a miss.
func (s *Service) ListGroups(ctx context.Context, userAddress string) ([]Group, error) {
	addr, err := ValidateAddress(userAddress)
	if err != nil {
		return nil, err
	}

	groups, hit, err := s.cache.Get(ctx, NormalizeAddress(addr))
	if err != nil {
		// A broken cache must not take down reads; fall through to the chain.
		s.log.Warn("snapshot cache read failed", "user", ShortenAddress(addr), "error", err)
	}
	if hit {
		s.log.Debug("snapshot cache hit", "user", ShortenAddress(addr), "groups", len(groups))
		return groups, nil
	}

	return s.Refresh(ctx, addr)
}

// Refresh re-reads every group the user belongs to from the chain and
// replaces the cached snapshot list. Groups that fail to decode are skipped
// so one bad contract cannot hide the rest.
func (s *Service) Refresh(ctx context.Context, userAddress string) ([]Group, error) {
	addr, err := ValidateAddress(userAddress)
	if err != nil {
		return nil, err
	}

	addresses, err := s.source.GroupsByUser(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user: %w", err)
	}

	groups := make([]Group, 0, len(addresses))
	for _, groupAddr := range addresses {
		g, err := s.source.FetchGroup(ctx, groupAddr, addr)
		if err != nil {
			s.log.Error("failed to fetch group snapshot",
				"group", ShortenAddress(groupAddr),
				"user", ShortenAddress(addr),
				"error", err)
			continue
		}
		groups = append(groups, *g)
	}

	// Newest groups first, matching the dashboard ordering.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})

	if err := s.cache.Set(ctx, NormalizeAddress(addr), groups); err != nil {
		s.log.Warn("failed to cache snapshots", "user", ShortenAddress(addr), "error", err)
	}

	return groups, nil
}

// GetGroup returns one group snapshot for a user, from the cached list when
// present, otherwise straight from the chain.
func (s *Service) GetGroup(ctx context.Context, groupAddress, userAddress string) (*Group, error) {
	userAddr, err := ValidateAddress(userAddress)
	if err != nil {
		return nil, err
	}
	groupAddr, err := ValidateAddress(groupAddress)
	if err != nil {
		return nil, err
	}

	groups, hit, err := s.cache.Get(ctx, NormalizeAddress(userAddr))
	if err == nil && hit {
		for i := range groups {
			if AddressesEqual(groups[i].ID, groupAddr) {
				return &groups[i], nil
			}
		}
	}

	g, err := s.source.FetchGroup(ctx, groupAddr, userAddr)
	if err != nil {
		return nil, err
	}

	if _, ok := g.FindParticipant(userAddr); !ok {
		return nil, ErrNotParticipant
	}

	return g, nil
}

// Invalidate drops the user's cached snapshots, forcing the next read to
// hit the chain. Called after any state-changing transaction lands.
func (s *Service) Invalidate(ctx context.Context, userAddress string) error {
	addr, err := ValidateAddress(userAddress)
	if err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, NormalizeAddress(addr))
}
