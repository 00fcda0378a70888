package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(proposalHandler *ProposalHandler, voteHandler *VoteHandler, authMiddleware func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(authMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/projects/{projectId}/proposals", func(r chi.Router) {
			r.Post("/", proposalHandler.CreateProposal)
			r.Get("/", proposalHandler.ListProposals)
		})

		r.Route("/proposals/{id}", func(r chi.Router) {
			r.Get("/", proposalHandler.GetProposal)
			r.Get("/results", proposalHandler.GetResults)
			r.Post("/votes", voteHandler.CastVote)
		})

		r.Get("/me/votes", voteHandler.MyVotes)
	})

	return r
}
