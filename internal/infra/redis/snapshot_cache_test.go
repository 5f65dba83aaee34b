package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraRedis "github.com/thomasfevre/chill-split/internal/infra/redis"
	"github.com/thomasfevre/chill-split/internal/platform/group"
	"github.com/thomasfevre/chill-split/pkg/logger"
)

const testUser = "0x1111111111111111111111111111111111111111"

func newTestCache(t *testing.T) (*infraRedis.SnapshotCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.New("test", os.Stdout)
	return infraRedis.NewSnapshotCacheWithTTL(client, 30*time.Second, log), mr
}

func sampleGroups() []group.Group {
	return []group.Group{
		{
			ID:        "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			Name:      "Trip",
			Status:    group.StatusLive,
			Creator:   testUser,
			CreatedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Participants: []group.Participant{
				group.NewParticipant(testUser, "alice", decimal.NewFromInt(50)),
			},
			Expenses: []group.Expense{
				{
					ID:     "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa-0",
					Label:  "Dinner",
					Amount: decimal.RequireFromString("42.50"),
					PaidBy: testUser,
					Date:   time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
					Validations: []group.Validation{
						{ParticipantID: testUser, Status: group.ValidationValidated},
					},
					FullyValidated: true,
				},
			},
		},
	}
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, hit, err := cache.Get(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, testUser, sampleGroups()))

	groups, hit, err := cache.Get(ctx, testUser)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "Trip", g.Name)
	assert.Equal(t, group.StatusLive, g.Status)
	require.Len(t, g.Participants, 1)
	assert.True(t, g.Participants[0].Balance.Equal(decimal.NewFromInt(50)))
	require.Len(t, g.Expenses, 1)
	assert.True(t, g.Expenses[0].Amount.Equal(decimal.RequireFromString("42.50")))
}

func TestSnapshotCache_KeyIsCaseInsensitive(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "0xABCDEF0123456789ABCDEF0123456789ABCDEF01", sampleGroups()))

	// Same address, different case
	_, hit, err := cache.Get(ctx, "0xabcdef0123456789abcdef0123456789abcdef01")
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testUser, sampleGroups()))
	require.NoError(t, cache.Invalidate(ctx, testUser))

	_, hit, err := cache.Get(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSnapshotCache_TTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testUser, sampleGroups()))

	mr.FastForward(31 * time.Second)

	_, hit, err := cache.Get(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSnapshotCache_EmptyListIsAHit(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	// A user with no groups is still a cached answer
	require.NoError(t, cache.Set(ctx, testUser, []group.Group{}))

	groups, hit, err := cache.Get(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, groups)
}
