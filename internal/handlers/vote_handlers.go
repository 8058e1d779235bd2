package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/middleware"
	"github.com/lajospolya/popular-vote/internal/models"
)

// VoteHandlers serves /votes and /polls
type VoteHandlers struct {
	votes  VoteAPI
	logger *logging.SafeLogger
}

func NewVoteHandlers(votes VoteAPI, logger *logging.SafeLogger) *VoteHandlers {
	return &VoteHandlers{votes: votes, logger: logger}
}

// CastVote godoc
// @Summary Cast the caller's vote on a policy
// @Description A citizen votes at most once per policy. A duplicate or rejected vote answers 422 with the outcome.
// @Tags votes
// @Accept json
// @Produce json
// @Param data body models.CastVoteRequest true "Vote"
// @Security BearerAuth
// @Success 200 {object} models.VoteResult
// @Failure 404
// @Failure 422 {object} models.VoteResult
// @Failure 429 {object} ErrorResponse
// @Router /votes [post]
func (h *VoteHandlers) CastVote(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWriteVotes) {
		return
	}
	var req models.CastVoteRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.votes.Cast(c.Request.Context(), middleware.AuthID(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if !result.IsAccepted() {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HasVoted godoc
// @Summary Report whether the caller voted on a policy
// @Tags votes
// @Produce json
// @Param id path int true "Policy id"
// @Security BearerAuth
// @Success 200 {object} models.HasVotedResponse
// @Router /votes/policies/{id}/has-voted [get]
func (h *VoteHandlers) HasVoted(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadVotes) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	voted, err := h.votes.HasVoted(c.Request.Context(), middleware.AuthID(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.HasVotedResponse{HasVoted: voted})
}

// GetPoll godoc
// @Summary Vote counts per selection for a policy
// @Description Every selection is listed, with zero counts included.
// @Tags votes
// @Produce json
// @Param policyId path int true "Policy id"
// @Security BearerAuth
// @Success 200 {array} models.PollSelectionCount
// @Failure 404
// @Router /polls/{policyId} [get]
func (h *VoteHandlers) GetPoll(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadVotes) {
		return
	}
	id, ok := pathID(c, "policyId")
	if !ok {
		return
	}
	counts, err := h.votes.Poll(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
