package group

import "errors"

var (
	// Address validation errors
	ErrMissingAddress  = errors.New("wallet address is required")
	ErrInvalidAddress  = errors.New("invalid EVM address format (must be 0x followed by 40 hex characters)")
	ErrInvalidChecksum = errors.New("invalid EVM address checksum")

	// Snapshot errors
	ErrGroupNotFound  = errors.New("group not found")
	ErrNotParticipant = errors.New("address is not a participant of this group")
)
