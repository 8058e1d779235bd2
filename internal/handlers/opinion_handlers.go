package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/middleware"
	"github.com/lajospolya/popular-vote/internal/models"
)

// OpinionHandlers serves /opinions
type OpinionHandlers struct {
	opinions OpinionAPI
	logger   *logging.SafeLogger
}

func NewOpinionHandlers(opinions OpinionAPI, logger *logging.SafeLogger) *OpinionHandlers {
	return &OpinionHandlers{opinions: opinions, logger: logger}
}

// ListOpinions godoc
// @Summary List all opinions
// @Tags opinions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.OpinionResponse
// @Router /opinions [get]
func (h *OpinionHandlers) ListOpinions(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadOpinions) {
		return
	}
	opinions, err := h.opinions.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]models.OpinionResponse, 0, len(opinions))
	for i := range opinions {
		out = append(out, opinions[i].ToResponse())
	}
	c.JSON(http.StatusOK, out)
}

// CreateOpinion godoc
// @Summary Post an opinion on a policy
// @Tags opinions
// @Accept json
// @Produce json
// @Param data body models.CreateOpinionRequest true "Opinion"
// @Security BearerAuth
// @Success 200 {object} models.OpinionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404
// @Router /opinions [post]
func (h *OpinionHandlers) CreateOpinion(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWriteOpinions) {
		return
	}
	var req models.CreateOpinionRequest
	if !bindJSON(c, &req) {
		return
	}
	opinion, err := h.opinions.Create(c.Request.Context(), middleware.AuthID(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, opinion.ToResponse())
}

// LikeCounts godoc
// @Summary Count likes for a set of opinions
// @Description Opinions without likes are omitted.
// @Tags opinions
// @Produce json
// @Param opinionIds query string true "Comma-separated opinion ids"
// @Security BearerAuth
// @Success 200 {array} models.OpinionLikeCount
// @Failure 400 {object} ErrorResponse
// @Router /opinions/likes/count [get]
func (h *OpinionHandlers) LikeCounts(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadOpinions) {
		return
	}
	ids, ok := idList(c, "opinionIds")
	if !ok {
		return
	}
	counts, err := h.opinions.LikeCounts(c.Request.Context(), ids)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	out := make([]models.OpinionLikeCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.OpinionLikeCount{OpinionID: id, LikeCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpinionID < out[j].OpinionID })
	c.JSON(http.StatusOK, out)
}

// GetOpinion godoc
// @Summary Get an opinion
// @Tags opinions
// @Produce json
// @Param id path int true "Opinion id"
// @Security BearerAuth
// @Success 200 {object} models.OpinionResponse
// @Failure 404
// @Router /opinions/{id} [get]
func (h *OpinionHandlers) GetOpinion(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadOpinions) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	opinion, err := h.opinions.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, opinion.ToResponse())
}

// DeleteOpinion godoc
// @Summary Delete an opinion
// @Tags opinions
// @Param id path int true "Opinion id"
// @Security BearerAuth
// @Success 200
// @Failure 404
// @Router /opinions/{id} [delete]
func (h *OpinionHandlers) DeleteOpinion(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeDeleteOpinions) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.opinions.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// LikeOpinion godoc
// @Summary Like an opinion
// @Description Idempotent.
// @Tags opinions
// @Param id path int true "Opinion id"
// @Security BearerAuth
// @Success 204
// @Failure 404
// @Router /opinions/{id}/like [post]
func (h *OpinionHandlers) LikeOpinion(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWriteOpinions) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.opinions.Like(c.Request.Context(), middleware.AuthID(c), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnlikeOpinion godoc
// @Summary Withdraw a like
// @Description Idempotent.
// @Tags opinions
// @Param id path int true "Opinion id"
// @Security BearerAuth
// @Success 204
// @Failure 404
// @Router /opinions/{id}/like [delete]
func (h *OpinionHandlers) UnlikeOpinion(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWriteOpinions) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.opinions.Unlike(c.Request.Context(), middleware.AuthID(c), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
