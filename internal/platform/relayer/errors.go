package relayer

import "errors"

var (
	// ErrInvalidKind indicates an unknown sponsorship kind
	ErrInvalidKind = errors.New("invalid sponsorship kind")

	// ErrEmptyTransaction indicates a missing signed transaction payload
	ErrEmptyTransaction = errors.New("signed transaction is required")

	// ErrQuotaExceeded indicates the user spent their hourly sponsorship quota
	ErrQuotaExceeded = errors.New("sponsorship quota exceeded")

	// ErrTransactionReverted indicates the sponsored transaction was mined
	// but reverted
	ErrTransactionReverted = errors.New("sponsored transaction reverted")

	// ErrSponsorshipNotFound indicates the sponsorship does not exist
	ErrSponsorshipNotFound = errors.New("sponsorship not found")
)
