package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/thomasfevre/chill-split/internal/platform/relayer"
	"github.com/thomasfevre/chill-split/internal/transport/httpapi/middleware"
)

// RelayerServiceInterface defines the interface for sponsorship operations
type RelayerServiceInterface interface {
	Sponsor(ctx context.Context, userAddress string, kind relayer.Kind, signedTx string) (*relayer.Sponsorship, error)
	History(ctx context.Context, userAddress string, limit int) ([]*relayer.Sponsorship, error)
}

// RelayerHandler handles gas sponsorship HTTP requests
type RelayerHandler struct {
	relayerService RelayerServiceInterface
}

// NewRelayerHandler creates a new relayer handler
func NewRelayerHandler(relayerService RelayerServiceInterface) *RelayerHandler {
	return &RelayerHandler{relayerService: relayerService}
}

// SponsorRequest represents the sponsorship request
type SponsorRequest struct {
	Kind     relayer.Kind `json:"kind"`
	SignedTx string       `json:"signed_tx"`
}

// SponsorshipsListResponse represents the response for listing sponsorships
type SponsorshipsListResponse struct {
	Sponsorships []*relayer.Sponsorship `json:"sponsorships"`
}

// Sponsor handles POST /relay/sponsor
func (h *RelayerHandler) Sponsor(w http.ResponseWriter, r *http.Request) {
	wallet, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SponsorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sponsorship, err := h.relayerService.Sponsor(r.Context(), wallet, req.Kind, req.SignedTx)
	if err != nil {
		switch {
		case errors.Is(err, relayer.ErrInvalidKind):
			respondWithError(w, http.StatusBadRequest, "kind must be authorization or execution")
		case errors.Is(err, relayer.ErrEmptyTransaction):
			respondWithError(w, http.StatusBadRequest, "signed_tx is required")
		case errors.Is(err, relayer.ErrQuotaExceeded):
			respondWithError(w, http.StatusTooManyRequests, "sponsorship quota exceeded, try again later")
		case errors.Is(err, relayer.ErrTransactionReverted):
			// The sponsorship record carries the hash of the reverted transaction
			respondWithJSON(w, http.StatusUnprocessableEntity, sponsorship)
		default:
			respondWithError(w, http.StatusBadGateway, "failed to sponsor transaction")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, sponsorship)
}

// ListSponsorships handles GET /relay/sponsorships
func (h *RelayerHandler) ListSponsorships(w http.ResponseWriter, r *http.Request) {
	wallet, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	sponsorships, err := h.relayerService.History(r.Context(), wallet, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list sponsorships")
		return
	}

	if sponsorships == nil {
		sponsorships = []*relayer.Sponsorship{}
	}

	respondWithJSON(w, http.StatusOK, SponsorshipsListResponse{Sponsorships: sponsorships})
}
