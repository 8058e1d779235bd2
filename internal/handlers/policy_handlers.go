package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/middleware"
	"github.com/lajospolya/popular-vote/internal/models"
)

// PolicyHandlers serves /policies
type PolicyHandlers struct {
	policies PolicyAPI
	opinions OpinionAPI
	logger   *logging.SafeLogger
}

func NewPolicyHandlers(policies PolicyAPI, opinions OpinionAPI, logger *logging.SafeLogger) *PolicyHandlers {
	return &PolicyHandlers{policies: policies, opinions: opinions, logger: logger}
}

// ListPolicies godoc
// @Summary Page through policies, newest first
// @Description Each row carries whether the caller bookmarked it.
// @Tags policies
// @Produce json
// @Param levelOfPolitics query int false "Level of politics id"
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size" default(20)
// @Security BearerAuth
// @Success 200 {object} models.Page[models.PolicySummaryResponse]
// @Failure 400 {object} ErrorResponse
// @Router /policies [get]
func (h *PolicyHandlers) ListPolicies(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadPolicies) {
		return
	}
	level, ok := optionalID(c, "levelOfPolitics")
	if !ok {
		return
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := h.policies.List(c.Request.Context(), middleware.AuthID(c), level, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.MapPage(page, models.PolicySummary.ToResponse))
}

// CreatePolicy godoc
// @Summary Publish a policy
// @Tags policies
// @Accept json
// @Produce json
// @Param data body models.CreatePolicyRequest true "Policy"
// @Security BearerAuth
// @Success 200 {object} models.PolicyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /policies [post]
func (h *PolicyHandlers) CreatePolicy(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWritePolicies) {
		return
	}
	var req models.CreatePolicyRequest
	if !bindJSON(c, &req) {
		return
	}
	policy, coAuthors, err := h.policies.Create(c.Request.Context(), middleware.AuthID(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, policy.ToResponse(coAuthors))
}

// ListBookmarks godoc
// @Summary Page through the caller's bookmarked policies
// @Tags policies
// @Produce json
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size" default(20)
// @Security BearerAuth
// @Success 200 {object} models.Page[models.PolicySummaryResponse]
// @Failure 404
// @Router /policies/bookmarks [get]
func (h *PolicyHandlers) ListBookmarks(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadPolicies) {
		return
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := h.policies.Bookmarks(c.Request.Context(), middleware.AuthID(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.MapPage(page, models.PolicySummary.ToResponse))
}

// GetPolicy godoc
// @Summary Get a policy with its co-authors
// @Tags policies
// @Produce json
// @Param id path int true "Policy id"
// @Security BearerAuth
// @Success 200 {object} models.PolicyResponse
// @Failure 404
// @Router /policies/{id} [get]
func (h *PolicyHandlers) GetPolicy(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadPolicies) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	policy, coAuthors, err := h.policies.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, policy.ToResponse(coAuthors))
}

// GetPolicyDetails godoc
// @Summary Get a policy with publisher, co-authors and opinions
// @Tags policies
// @Produce json
// @Param id path int true "Policy id"
// @Security BearerAuth
// @Success 200 {object} models.PolicyDetailsResponse
// @Failure 404
// @Router /policies/{id}/details [get]
func (h *PolicyHandlers) GetPolicyDetails(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadPolicies) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	details, err := h.policies.Details(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, details.ToResponse())
}

// DeletePolicy godoc
// @Summary Delete a policy
// @Tags policies
// @Param id path int true "Policy id"
// @Security BearerAuth
// @Success 200
// @Failure 404
// @Router /policies/{id} [delete]
func (h *PolicyHandlers) DeletePolicy(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeDeletePolicies) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.policies.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// BookmarkPolicy godoc
// @Summary Bookmark a policy for the caller
// @Description Idempotent.
// @Tags policies
// @Param id path int true "Policy id"
// @Security BearerAuth
// @Success 204
// @Failure 404
// @Router /policies/{id}/bookmark [post]
func (h *PolicyHandlers) BookmarkPolicy(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWritePolicies) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.policies.Bookmark(c.Request.Context(), middleware.AuthID(c), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnbookmarkPolicy godoc
// @Summary Remove the caller's bookmark
// @Description Idempotent.
// @Tags policies
// @Param id path int true "Policy id"
// @Security BearerAuth
// @Success 204
// @Failure 404
// @Router /policies/{id}/bookmark [delete]
func (h *PolicyHandlers) UnbookmarkPolicy(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWritePolicies) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.policies.Unbookmark(c.Request.Context(), middleware.AuthID(c), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// IsBookmarked godoc
// @Summary Report whether the caller bookmarked a policy
// @Tags policies
// @Produce json
// @Param id path int true "Policy id"
// @Security BearerAuth
// @Success 200 {object} models.IsBookmarkedResponse
// @Router /policies/{id}/is-bookmarked [get]
func (h *PolicyHandlers) IsBookmarked(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadPolicies) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	bookmarked, err := h.policies.IsBookmarked(c.Request.Context(), middleware.AuthID(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.IsBookmarkedResponse{IsBookmarked: bookmarked})
}

// ListPolicyOpinions godoc
// @Summary List the opinions on a policy
// @Tags policies
// @Produce json
// @Param id path int true "Policy id"
// @Security BearerAuth
// @Success 200 {array} models.OpinionDetailResponse
// @Failure 404
// @Router /policies/{id}/opinions [get]
func (h *PolicyHandlers) ListPolicyOpinions(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadOpinions) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	opinions, err := h.opinions.ByPolicy(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]models.OpinionDetailResponse, 0, len(opinions))
	for _, o := range opinions {
		out = append(out, o.ToResponse())
	}
	c.JSON(http.StatusOK, out)
}
