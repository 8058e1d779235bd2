package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/middleware"
	"github.com/lajospolya/popular-vote/internal/models"
)

// PartyHandlers serves /political-parties
type PartyHandlers struct {
	parties PartyAPI
	logger  *logging.SafeLogger
}

func NewPartyHandlers(parties PartyAPI, logger *logging.SafeLogger) *PartyHandlers {
	return &PartyHandlers{parties: parties, logger: logger}
}

func partyResponses(parties []models.PoliticalParty) []models.PoliticalPartyResponse {
	out := make([]models.PoliticalPartyResponse, 0, len(parties))
	for _, p := range parties {
		out = append(out, p.ToResponse())
	}
	return out
}

// ListParties godoc
// @Summary List political parties
// @Description Returns a page when both page and size are given, otherwise the full list.
// @Tags political-parties
// @Produce json
// @Param levelOfPolitics query int false "Level of politics id"
// @Param provinceAndTerritoryId query int false "Province or territory id"
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size"
// @Security BearerAuth
// @Success 200 {array} models.PoliticalPartyResponse
// @Failure 400 {object} ErrorResponse
// @Router /political-parties [get]
func (h *PartyHandlers) ListParties(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadParties) {
		return
	}
	level, ok := optionalID(c, "levelOfPolitics")
	if !ok {
		return
	}
	province, ok := optionalID(c, "provinceAndTerritoryId")
	if !ok {
		return
	}
	filter := models.PartyFilter{LevelOfPoliticsID: level, ProvinceAndTerritoryID: province}

	if c.Query("page") == "" || c.Query("size") == "" {
		parties, err := h.parties.All(c.Request.Context(), filter)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, partyResponses(parties))
		return
	}

	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := h.parties.List(c.Request.Context(), filter, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.MapPage(page, models.PoliticalParty.ToResponse))
}

// CreateParty godoc
// @Summary Create a political party
// @Tags political-parties
// @Accept json
// @Produce json
// @Param data body models.PoliticalPartyRequest true "Party"
// @Security BearerAuth
// @Success 200 {object} models.PoliticalPartyResponse
// @Failure 400 {object} ErrorResponse
// @Router /political-parties [post]
func (h *PartyHandlers) CreateParty(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWriteParties) {
		return
	}
	var req models.PoliticalPartyRequest
	if !bindJSON(c, &req) {
		return
	}
	party, err := h.parties.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, party.ToResponse())
}

// GetParty godoc
// @Summary Get a political party
// @Tags political-parties
// @Produce json
// @Param id path int true "Party id"
// @Security BearerAuth
// @Success 200 {object} models.PoliticalPartyResponse
// @Failure 404
// @Router /political-parties/{id} [get]
func (h *PartyHandlers) GetParty(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadParties) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	party, err := h.parties.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, party.ToResponse())
}

// UpdateParty godoc
// @Summary Replace a political party
// @Tags political-parties
// @Accept json
// @Produce json
// @Param id path int true "Party id"
// @Param data body models.PoliticalPartyRequest true "Party"
// @Security BearerAuth
// @Success 200 {object} models.PoliticalPartyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404
// @Router /political-parties/{id} [put]
func (h *PartyHandlers) UpdateParty(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWriteParties) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.PoliticalPartyRequest
	if !bindJSON(c, &req) {
		return
	}
	party, err := h.parties.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, party.ToResponse())
}

// DeleteParty godoc
// @Summary Delete a political party
// @Tags political-parties
// @Param id path int true "Party id"
// @Security BearerAuth
// @Success 200
// @Failure 404
// @Router /political-parties/{id} [delete]
func (h *PartyHandlers) DeleteParty(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeDeleteParties) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.parties.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// ListPartyMembers godoc
// @Summary List the politicians affiliated with a party
// @Tags political-parties
// @Produce json
// @Param id path int true "Party id"
// @Security BearerAuth
// @Success 200 {array} models.CitizenResponse
// @Failure 404
// @Router /political-parties/{id}/members [get]
func (h *PartyHandlers) ListPartyMembers(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadParties) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	members, err := h.parties.Members(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, citizenResponses(members))
}

// ListPartyPolicies godoc
// @Summary List the policies published by a party's politicians
// @Tags political-parties
// @Produce json
// @Param id path int true "Party id"
// @Security BearerAuth
// @Success 200 {array} models.PolicyResponse
// @Failure 404
// @Router /political-parties/{id}/policies [get]
func (h *PartyHandlers) ListPartyPolicies(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadPolicies) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	policies, err := h.parties.Policies(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, policyResponses(policies))
}
