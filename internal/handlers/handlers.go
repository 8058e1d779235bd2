package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/models"
	"go.uber.org/zap"
)

// Default page size when a paged endpoint is called without size
const defaultPageSize = 20

// ErrorResponse is the body of every non-404 error
type ErrorResponse struct {
	Error string `json:"error"`
}

// The service surfaces the handlers depend on. They are satisfied by the
// services package.

type CitizenAPI interface {
	List(ctx context.Context) ([]models.Citizen, error)
	Get(ctx context.Context, id int64) (models.CitizenProfile, error)
	Search(ctx context.Context, givenName, surname string) ([]models.Citizen, error)
	Self(ctx context.Context, authID string) (models.CitizenProfile, error)
	Register(ctx context.Context, authID string, req models.CreateCitizenRequest) (models.Citizen, error)
	UpdatePostalCode(ctx context.Context, authID string, postalCodeID int64) (models.CitizenProfile, error)
	DeclarePolitician(ctx context.Context, authID string, req models.DeclarePoliticianRequest) error
	PendingVerifications(ctx context.Context) ([]models.Citizen, error)
	VerifyPolitician(ctx context.Context, id int64) (models.CitizenProfile, error)
	Politicians(ctx context.Context, levelOfPoliticsID *int64, req models.PageRequest) (models.Page[models.Citizen], error)
	Delete(ctx context.Context, id int64) error
}

type PolicyAPI interface {
	List(ctx context.Context, authID string, levelOfPoliticsID *int64, req models.PageRequest) (models.Page[models.PolicySummary], error)
	Get(ctx context.Context, id int64) (models.Policy, []models.Citizen, error)
	Details(ctx context.Context, id int64) (models.PolicyDetails, error)
	Create(ctx context.Context, authID string, req models.CreatePolicyRequest) (models.Policy, []models.Citizen, error)
	Delete(ctx context.Context, id int64) error
	ByPublisher(ctx context.Context, citizenID int64, req models.PageRequest) (models.Page[models.Policy], error)
	Bookmark(ctx context.Context, authID string, policyID int64) error
	Unbookmark(ctx context.Context, authID string, policyID int64) error
	IsBookmarked(ctx context.Context, authID string, policyID int64) (bool, error)
	Bookmarks(ctx context.Context, authID string, req models.PageRequest) (models.Page[models.PolicySummary], error)
}

type OpinionAPI interface {
	List(ctx context.Context) ([]models.Opinion, error)
	ByPolicy(ctx context.Context, policyID int64) ([]models.OpinionDetail, error)
	Get(ctx context.Context, id int64) (models.Opinion, error)
	Create(ctx context.Context, authID string, req models.CreateOpinionRequest) (models.Opinion, error)
	Delete(ctx context.Context, id int64) error
	Like(ctx context.Context, authID string, opinionID int64) error
	Unlike(ctx context.Context, authID string, opinionID int64) error
	LikedOpinionIDs(ctx context.Context, authID string) ([]int64, error)
	LikeCounts(ctx context.Context, opinionIDs []int64) (map[int64]int64, error)
}

type PartyAPI interface {
	All(ctx context.Context, filter models.PartyFilter) ([]models.PoliticalParty, error)
	List(ctx context.Context, filter models.PartyFilter, req models.PageRequest) (models.Page[models.PoliticalParty], error)
	Get(ctx context.Context, id int64) (models.PoliticalParty, error)
	Members(ctx context.Context, id int64) ([]models.Citizen, error)
	Policies(ctx context.Context, id int64) ([]models.Policy, error)
	Create(ctx context.Context, req models.PoliticalPartyRequest) (models.PoliticalParty, error)
	Update(ctx context.Context, id int64, req models.PoliticalPartyRequest) (models.PoliticalParty, error)
	Delete(ctx context.Context, id int64) error
}

type VoteAPI interface {
	Cast(ctx context.Context, authID string, req models.CastVoteRequest) (models.VoteResult, error)
	HasVoted(ctx context.Context, authID string, policyID int64) (bool, error)
	Poll(ctx context.Context, policyID int64) ([]models.PollSelectionCount, error)
}

type GeoAPI interface {
	Levels(ctx context.Context) ([]models.LevelOfPolitics, error)
	Provinces(ctx context.Context) ([]models.ProvinceAndTerritory, error)
	GeoData(ctx context.Context) (models.GeoData, error)
}

// writeError maps a service error to its status. Not-found answers with an
// empty body; unexpected errors are logged and hidden from the client.
func writeError(c *gin.Context, logger *logging.SafeLogger, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrVotingClosed),
		errors.Is(err, models.ErrNotPolitician),
		errors.Is(err, models.ErrInvalidState):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// pathID parses a positive int64 path parameter, writing 400 otherwise
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// optionalID parses an optional int64 query parameter
func optionalID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	return &id, true
}

// pageRequest reads zero-based page and size. Range checks are left to
// PageRequest.Validate in the services.
func pageRequest(c *gin.Context) (models.PageRequest, bool) {
	req := models.PageRequest{Page: 0, Size: defaultPageSize}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid page")
			return req, false
		}
		req.Page = page
	}
	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid size")
			return req, false
		}
		req.Size = size
	}
	return req, true
}

// idList parses "1,2,3" as well as repeated parameters
func idList(c *gin.Context, name string) ([]int64, bool) {
	var ids []int64
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				badRequest(c, "invalid "+name)
				return nil, false
			}
			ids = append(ids, id)
		}
	}
	return ids, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func citizenResponses(citizens []models.Citizen) []models.CitizenResponse {
	out := make([]models.CitizenResponse, 0, len(citizens))
	for i := range citizens {
		out = append(out, citizens[i].ToResponse())
	}
	return out
}

func policyResponses(policies []models.Policy) []models.PolicyResponse {
	out := make([]models.PolicyResponse, 0, len(policies))
	for i := range policies {
		out = append(out, policies[i].ToResponse(nil))
	}
	return out
}
