package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thomasfevre/chill-split/internal/platform/group"
	"github.com/thomasfevre/chill-split/internal/settlement"
	"github.com/thomasfevre/chill-split/internal/transport/httpapi/middleware"
)

// GroupServiceInterface defines the interface for group snapshot operations
type GroupServiceInterface interface {
	ListGroups(ctx context.Context, userAddress string) ([]group.Group, error)
	GetGroup(ctx context.Context, groupAddress, userAddress string) (*group.Group, error)
	Refresh(ctx context.Context, userAddress string) ([]group.Group, error)
	Invalidate(ctx context.Context, userAddress string) error
}

// GroupHandler handles group snapshot and settlement HTTP requests
type GroupHandler struct {
	groups GroupServiceInterface
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groups GroupServiceInterface) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// GroupListItem is one group in the list response, with the dashboard
// fields derived from the snapshot
type GroupListItem struct {
	group.Group
	RealExpenseCount int  `json:"real_expense_count"`
	PendingAction    bool `json:"pending_action"`
}

// GroupsListResponse represents the response for listing groups
type GroupsListResponse struct {
	Groups []GroupListItem `json:"groups"`
}

func toGroupListItem(g group.Group, userAddress string) GroupListItem {
	return GroupListItem{
		Group:            g,
		RealExpenseCount: g.RealExpenseCount(),
		PendingAction:    g.PendingActionFor(userAddress),
	}
}

// ListGroups handles GET /groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	wallet, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groups, err := h.groups.ListGroups(r.Context(), wallet)
	if err != nil {
		respondGroupError(w, err)
		return
	}

	items := make([]GroupListItem, 0, len(groups))
	for _, g := range groups {
		items = append(items, toGroupListItem(g, wallet))
	}

	respondWithJSON(w, http.StatusOK, GroupsListResponse{Groups: items})
}

// GetGroup handles GET /groups/{address}
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	wallet, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	g, err := h.groups.GetGroup(r.Context(), chi.URLParam(r, "address"), wallet)
	if err != nil {
		respondGroupError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toGroupListItem(*g, wallet))
}

// GetSettlement handles GET /groups/{address}/settlement
func (h *GroupHandler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	wallet, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	g, err := h.groups.GetGroup(r.Context(), chi.URLParam(r, "address"), wallet)
	if err != nil {
		respondGroupError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, settlement.Calculate(g))
}

// RefreshGroup handles POST /groups/{address}/refresh.
// The cache is keyed per user, so a refresh re-reads every group the user
// belongs to and returns the requested one.
func (h *GroupHandler) RefreshGroup(w http.ResponseWriter, r *http.Request) {
	wallet, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groupAddr, err := group.ValidateAddress(chi.URLParam(r, "address"))
	if err != nil {
		respondGroupError(w, err)
		return
	}

	if err := h.groups.Invalidate(r.Context(), wallet); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to invalidate snapshots")
		return
	}

	groups, err := h.groups.Refresh(r.Context(), wallet)
	if err != nil {
		respondGroupError(w, err)
		return
	}

	for _, g := range groups {
		if group.AddressesEqual(g.ID, groupAddr) {
			respondWithJSON(w, http.StatusOK, toGroupListItem(g, wallet))
			return
		}
	}

	respondWithError(w, http.StatusNotFound, "group not found")
}

// respondGroupError maps group domain errors to HTTP status codes
func respondGroupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, group.ErrMissingAddress):
		respondWithError(w, http.StatusBadRequest, "address is required")
	case errors.Is(err, group.ErrInvalidAddress):
		respondWithError(w, http.StatusBadRequest, "invalid EVM address format")
	case errors.Is(err, group.ErrInvalidChecksum):
		respondWithError(w, http.StatusBadRequest, "invalid EVM address checksum")
	case errors.Is(err, group.ErrNotParticipant):
		respondWithError(w, http.StatusForbidden, "not a participant of this group")
	case errors.Is(err, group.ErrGroupNotFound):
		respondWithError(w, http.StatusNotFound, "group not found")
	default:
		respondWithError(w, http.StatusInternalServerError, "failed to read group state")
	}
}
