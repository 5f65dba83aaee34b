//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasfevre/chill-split/internal/platform/relayer"
	"github.com/thomasfevre/chill-split/testutil/testdb"
)

var testDB *testdb.TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	testDB, err = testdb.NewTestDB(ctx)
	if err != nil {
		panic("failed to create test database: " + err.Error())
	}

	code := m.Run()

	testDB.Close(ctx)
	if code != 0 {
		panic("tests failed")
	}
}

func setupTest(t *testing.T) (*SponsorshipRepository, context.Context) {
	ctx := context.Background()
	require.NoError(t, testDB.Reset(ctx))

	repo := NewSponsorshipRepository(testDB.Pool)
	return repo, ctx
}

func newSponsorship(userAddress string) *relayer.Sponsorship {
	return &relayer.Sponsorship{
		UserAddress: userAddress,
		Kind:        relayer.KindExecution,
		Status:      relayer.StatusPending,
	}
}

func TestSponsorshipRepository_CreateAndGet(t *testing.T) {
	repo, ctx := setupTest(t)

	s := newSponsorship("0x1111111111111111111111111111111111111111")
	require.NoError(t, repo.Create(ctx, s))
	assert.NotEqual(t, uuid.Nil, s.ID)

	retrieved, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.UserAddress, retrieved.UserAddress)
	assert.Equal(t, relayer.KindExecution, retrieved.Kind)
	assert.Equal(t, relayer.StatusPending, retrieved.Status)
	assert.Empty(t, retrieved.TxHash)
}

func TestSponsorshipRepository_GetByID_NotFound(t *testing.T) {
	repo, ctx := setupTest(t)

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, relayer.ErrSponsorshipNotFound)
}

func TestSponsorshipRepository_UpdateStatus(t *testing.T) {
	repo, ctx := setupTest(t)

	s := newSponsorship("0x1111111111111111111111111111111111111111")
	require.NoError(t, repo.Create(ctx, s))

	require.NoError(t, repo.UpdateStatus(ctx, s.ID, relayer.StatusConfirmed, "0xhash"))

	retrieved, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, relayer.StatusConfirmed, retrieved.Status)
	assert.Equal(t, "0xhash", retrieved.TxHash)
	assert.True(t, retrieved.UpdatedAt.After(retrieved.CreatedAt) ||
		retrieved.UpdatedAt.Equal(retrieved.CreatedAt))
}

func TestSponsorshipRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, ctx := setupTest(t)

	err := repo.UpdateStatus(ctx, uuid.New(), relayer.StatusFailed, "")
	assert.ErrorIs(t, err, relayer.ErrSponsorshipNotFound)
}

func TestSponsorshipRepository_CountSince(t *testing.T) {
	repo, ctx := setupTest(t)

	user := "0x1111111111111111111111111111111111111111"
	other := "0x2222222222222222222222222222222222222222"

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newSponsorship(user)))
	}
	require.NoError(t, repo.Create(ctx, newSponsorship(other)))

	count, err := repo.CountSince(ctx, user, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Everything was created just now, so a future cutoff sees nothing
	count, err = repo.CountSince(ctx, user, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSponsorshipRepository_ListByUser(t *testing.T) {
	repo, ctx := setupTest(t)

	user := "0x1111111111111111111111111111111111111111"

	first := newSponsorship(user)
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(10 * time.Millisecond)
	second := newSponsorship(user)
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.ListByUser(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Newest first
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	list, err = repo.ListByUser(ctx, user, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}
