package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/middleware"
	"github.com/lajospolya/popular-vote/internal/models"
	"go.uber.org/zap"
)

// CitizenHandlers serves /citizens
type CitizenHandlers struct {
	citizens CitizenAPI
	opinions OpinionAPI
	policies PolicyAPI
	logger   *logging.SafeLogger
}

// NewCitizenHandlers creates a new CitizenHandlers instance
func NewCitizenHandlers(citizens CitizenAPI, opinions OpinionAPI, policies PolicyAPI, logger *logging.SafeLogger) *CitizenHandlers {
	return &CitizenHandlers{citizens: citizens, opinions: opinions, policies: policies, logger: logger}
}

// ListCitizens godoc
// @Summary List citizens
// @Tags citizens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CitizenResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /citizens [get]
func (h *CitizenHandlers) ListCitizens(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadCitizens) {
		return
	}
	citizens, err := h.citizens.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, citizenResponses(citizens))
}

// ListPoliticians godoc
// @Summary List verified politicians
// @Tags citizens
// @Produce json
// @Param levelOfPolitics query int false "Level of politics id"
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size" default(20)
// @Security BearerAuth
// @Success 200 {object} models.Page[models.CitizenResponse]
// @Failure 400 {object} ErrorResponse
// @Router /citizens/politicians [get]
func (h *CitizenHandlers) ListPoliticians(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadCitizens) {
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
	page, err := h.citizens.Politicians(c.Request.Context(), level, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.MapPage(page, func(ct models.Citizen) models.CitizenResponse { return ct.ToResponse() }))
}

// ListPendingVerifications godoc
// @Summary List citizens awaiting politician verification
// @Tags citizens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CitizenResponse
// @Router /citizens/verify-politician [get]
func (h *CitizenHandlers) ListPendingVerifications(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadVerifyPolitician) {
		return
	}
	citizens, err := h.citizens.PendingVerifications(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, citizenResponses(citizens))
}

// SearchCitizens godoc
// @Summary Search citizens by name
// @Tags citizens
// @Produce json
// @Param givenName query string false "Given name prefix"
// @Param surname query string false "Surname prefix"
// @Security BearerAuth
// @Success 200 {array} models.CitizenResponse
// @Failure 400 {object} ErrorResponse
// @Router /citizens/search [get]
func (h *CitizenHandlers) SearchCitizens(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadCitizens) {
		return
	}
	citizens, err := h.citizens.Search(c.Request.Context(), c.Query("givenName"), c.Query("surname"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, citizenResponses(citizens))
}

// GetCitizen godoc
// @Summary Get a citizen's public profile
// @Tags citizens
// @Produce json
// @Param id path int true "Citizen id"
// @Security BearerAuth
// @Success 200 {object} models.CitizenProfileResponse
// @Failure 404
// @Router /citizens/{id} [get]
func (h *CitizenHandlers) GetCitizen(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadCitizens) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.citizens.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile.ToResponse())
}

// ListCitizenPolicies godoc
// @Summary Page through the policies a citizen published
// @Tags citizens
// @Produce json
// @Param id path int true "Citizen id"
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size" default(20)
// @Security BearerAuth
// @Success 200 {object} models.Page[models.PolicyResponse]
// @Failure 404
// @Router /citizens/{id}/policies [get]
func (h *CitizenHandlers) ListCitizenPolicies(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadPolicies) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := h.policies.ByPublisher(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.MapPage(page, func(p models.Policy) models.PolicyResponse { return p.ToResponse(nil) }))
}

// GetSelf godoc
// @Summary Get the caller's own profile
// @Description Needs only a valid token so a first-time user can discover they are not registered yet.
// @Tags citizens
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.CitizenSelfResponse
// @Failure 404
// @Router /citizens/self [get]
func (h *CitizenHandlers) GetSelf(c *gin.Context) {
	self, err := h.citizens.Self(c.Request.Context(), middleware.AuthID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, self.ToSelfResponse())
}

// RegisterSelf godoc
// @Summary Register the caller as a citizen
// @Description The caller has no roles yet, so only a valid token is required.
// @Tags citizens
// @Accept json
// @Produce json
// @Param data body models.CreateCitizenRequest true "Citizen names"
// @Security BearerAuth
// @Success 200 {object} models.CitizenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /citizens/self [post]
func (h *CitizenHandlers) RegisterSelf(c *gin.Context) {
	var req models.CreateCitizenRequest
	if !bindJSON(c, &req) {
		return
	}
	citizen, err := h.citizens.Register(c.Request.Context(), middleware.AuthID(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, citizen.ToResponse())
}

// UpdatePostalCode godoc
// @Summary Set the caller's postal code
// @Tags citizens
// @Accept json
// @Produce json
// @Param data body models.UpdatePostalCodeRequest true "Postal code"
// @Security BearerAuth
// @Success 200 {object} models.CitizenSelfResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404
// @Router /citizens/self/postal-code [put]
func (h *CitizenHandlers) UpdatePostalCode(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWriteSelf) {
		return
	}
	var req models.UpdatePostalCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	self, err := h.citizens.UpdatePostalCode(c.Request.Context(), middleware.AuthID(c), req.PostalCodeID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, self.ToSelfResponse())
}

// DeclarePolitician godoc
// @Summary Declare the caller a politician, pending verification
// @Tags citizens
// @Accept json
// @Param data body models.DeclarePoliticianRequest true "Political details"
// @Security BearerAuth
// @Success 202
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /citizens/self/declare-politician [post]
func (h *CitizenHandlers) DeclarePolitician(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeDeclarePolitician) {
		return
	}
	var req models.DeclarePoliticianRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.citizens.DeclarePolitician(c.Request.Context(), middleware.AuthID(c), req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// LikedOpinions godoc
// @Summary List the ids of opinions the caller liked
// @Tags citizens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} int
// @Router /citizens/self/liked-opinions [get]
func (h *CitizenHandlers) LikedOpinions(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadSelf) {
		return
	}
	ids, err := h.opinions.LikedOpinionIDs(c.Request.Context(), middleware.AuthID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

// VerifyPolitician godoc
// @Summary Verify a declared politician
// @Tags citizens
// @Produce json
// @Param id path int true "Citizen id"
// @Security BearerAuth
// @Success 200 {object} models.CitizenSelfResponse
// @Failure 404
// @Failure 422 {object} ErrorResponse
// @Router /citizens/{id}/verify-politician [put]
func (h *CitizenHandlers) VerifyPolitician(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeWriteVerifyPolitician) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.citizens.VerifyPolitician(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.logger.Info("politician verified by reviewer",
		zap.Int64("citizen_id", id))
	c.JSON(http.StatusOK, profile.ToSelfResponse())
}

// DeleteCitizen godoc
// @Summary Delete a citizen
// @Tags citizens
// @Param id path int true "Citizen id"
// @Security BearerAuth
// @Success 200
// @Failure 404
// @Router /citizens/{id} [delete]
func (h *CitizenHandlers) DeleteCitizen(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeDeleteCitizens) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.citizens.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}
