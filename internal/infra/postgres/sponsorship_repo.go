package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thomasfevre/chill-split/internal/platform/relayer"
)

// SponsorshipRepository implements the relayer ledger using PostgreSQL
type SponsorshipRepository struct {
	pool *pgxpool.Pool
}

// NewSponsorshipRepository creates a new PostgreSQL sponsorship repository
func NewSponsorshipRepository(pool *pgxpool.Pool) *SponsorshipRepository {
	return &SponsorshipRepository{pool: pool}
}

// Create inserts a new sponsorship record
func (r *SponsorshipRepository) Create(ctx context.Context, s *relayer.Sponsorship) error {
	query := `
		INSERT INTO sponsorships (id, user_address, kind, tx_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserAddress,
		s.Kind,
		s.TxHash,
		s.Status,
		s.CreatedAt,
		s.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create sponsorship: %w", err)
	}

	return nil
}

// UpdateStatus sets the status and transaction hash of a sponsorship
func (r *SponsorshipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status relayer.Status, txHash string) error {
	query := `
		UPDATE sponsorships
		SET status = $1, tx_hash = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, status, txHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update sponsorship: %w", err)
	}

	if result.RowsAffected() == 0 {
		return relayer.ErrSponsorshipNotFound
	}

	return nil
}

// CountSince counts a user's sponsorships created at or after the given time
func (r *SponsorshipRepository) CountSince(ctx context.Context, userAddress string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM sponsorships
		WHERE user_address = $1 AND created_at >= $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, userAddress, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sponsorships: %w", err)
	}

	return count, nil
}

// ListByUser returns a user's most recent sponsorships
func (r *SponsorshipRepository) ListByUser(ctx context.Context, userAddress string, limit int) ([]*relayer.Sponsorship, error) {
	query := `
		SELECT id, user_address, kind, tx_hash, status, created_at, updated_at
		FROM sponsorships
		WHERE user_address = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sponsorships: %w", err)
	}
	defer rows.Close()

	var sponsorships []*relayer.Sponsorship
	for rows.Next() {
		s := &relayer.Sponsorship{}
		err := rows.Scan(
			&s.ID,
			&s.UserAddress,
			&s.Kind,
			&s.TxHash,
			&s.Status,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sponsorship: %w", err)
		}
		sponsorships = append(sponsorships, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sponsorships: %w", err)
	}

	return sponsorships, nil
}

// GetByID retrieves a sponsorship by ID
func (r *SponsorshipRepository) GetByID(ctx context.Context, id uuid.UUID) (*relayer.Sponsorship, error) {
	query := `
		SELECT id, user_address, kind, tx_hash, status, created_at, updated_at
		FROM sponsorships
		WHERE id = $1
	`

	s := &relayer.Sponsorship{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.UserAddress,
		&s.Kind,
		&s.TxHash,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, relayer.ErrSponsorshipNotFound
		}
		return nil, fmt.Errorf("failed to get sponsorship: %w", err)
	}

	return s, nil
}
