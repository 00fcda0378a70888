package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hivestarter/governance/internal/core/domain"
	"github.com/hivestarter/governance/internal/core/ports"
)

type ProposalHandler struct {
	service ports.GovernanceService
}

func NewProposalHandler(service ports.GovernanceService) *ProposalHandler {
	return &ProposalHandler{
		service: service,
	}
}

type createProposalRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Options     []string  `json:"options"`
	EndDate     time.Time `json:"end_date"`
}

type proposalResponse struct {
	*domain.Proposal
	EffectiveState domain.EffectiveState `json:"effective_state"`
}

func newProposalResponse(p *domain.Proposal) proposalResponse {
	return proposalResponse{Proposal: p, EffectiveState: p.EffectiveState(time.Now())}
}

// CreateProposal godoc
// @Summary      Creates a governance proposal
// @Description  Opens a new proposal for the project's backers to vote on. Only the project owner may create one.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Failure      401
// @Failure      403
// @Router       /projects/{projectId}/proposals [post]
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	if projectID == "" {
		http.Error(w, "missing project id", http.StatusBadRequest)
		return
	}

	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CreateProposalInput{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Options:     req.Options,
		EndDate:     req.EndDate,
	}

	proposal, err := h.service.CreateProposal(r.Context(), connectedUsername(r), input)
	if err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrNotAuthenticated):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, domain.ErrNotProjectOwner):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(newProposalResponse(proposal)); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// ListProposals godoc
// @Summary      Lists a project's governance proposals
// @Description  Returns proposals most recent first. The optional state filter matches the Active/Completed tabs.
// @Tags         proposals
// @Produce      json
// @Param        state  query  string  false  "active or completed"
// @Success      200
// @Router       /projects/{projectId}/proposals [get]
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	if projectID == "" {
		http.Error(w, "missing project id", http.StatusBadRequest)
		return
	}

	input := ports.ListProposalsInput{
		ProjectID: projectID,
		State:     r.URL.Query().Get("state"),
	}

	proposals, err := h.service.ListProposals(r.Context(), input)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]proposalResponse, 0, len(proposals))
	for _, p := range proposals {
		out = append(out, newProposalResponse(p))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// GetProposal godoc
// @Summary      Fetches a single proposal
// @Tags         proposals
// @Produce      json
// @Success      200
// @Failure      404
// @Router       /proposals/{id} [get]
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing proposal id", http.StatusBadRequest)
		return
	}

	proposal, err := h.service.GetProposal(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProposalID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrProposalNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newProposalResponse(proposal)); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

type resultsResponse struct {
	Options []string                       `json:"options"`
	Results map[string]domain.OptionResult `json:"results"`
	Voters  int                            `json:"voters"`
}

// GetResults godoc
// @Summary      Returns the tallied results of a proposal
// @Description  Per-option voting power and rounded percentages, in the proposal's option order.
// @Tags         proposals
// @Produce      json
// @Success      200
// @Failure      404
// @Router       /proposals/{id}/results [get]
func (h *ProposalHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing proposal id", http.StatusBadRequest)
		return
	}

	results, err := h.service.Results(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProposalID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrProposalNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := resultsResponse{
		Options: results.Order,
		Results: results.Options,
		Voters:  results.Voters,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
