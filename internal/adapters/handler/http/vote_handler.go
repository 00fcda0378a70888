package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hivestarter/governance/internal/core/domain"
	"github.com/hivestarter/governance/internal/core/ports"
)

type VoteHandler struct {
	service ports.GovernanceService
}

func NewVoteHandler(service ports.GovernanceService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type castVoteRequest struct {
	Option string `json:"option"`
}

// CastVote godoc
// @Summary      Casts a vote on a proposal
// @Description  Records the connected user's choice weighted by their governance tokens. Re-voting replaces the prior vote.
// @Tags         votes
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      401
// @Failure      403
// @Failure      404
// @Failure      409
// @Router       /proposals/{id}/votes [post]
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	proposalIDStr := chi.URLParam(r, "id")
	proposalID, err := uuid.Parse(proposalIDStr)
	if err != nil {
		http.Error(w, "invalid proposal id", http.StatusBadRequest)
		return
	}

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CastVoteInput{
		ProposalID: proposalID,
		Option:     req.Option,
	}

	if err := h.service.CastVote(r.Context(), connectedUsername(r), input); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotAuthenticated):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, domain.ErrNotEligible):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, domain.ErrClosedForVoting):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, domain.ErrInvalidOption):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrProposalNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// MyVotes godoc
// @Summary      Returns the connected user's votes
// @Description  Maps each proposal the user has voted on to the chosen option, for preselecting choices in the UI.
// @Tags         votes
// @Produce      json
// @Success      200
// @Failure      401
// @Router       /me/votes [get]
func (h *VoteHandler) MyVotes(w http.ResponseWriter, r *http.Request) {
	votes, err := h.service.UserVotes(r.Context(), connectedUsername(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(votes); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
