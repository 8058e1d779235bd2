package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/middleware"
)

// Dependencies wires the services behind the HTTP routes
type Dependencies struct {
	Citizens      CitizenAPI
	Policies      PolicyAPI
	Opinions      OpinionAPI
	Parties       PartyAPI
	Votes         VoteAPI
	Geo           GeoAPI
	Authenticator *middleware.Authenticator
	VoteLimiter   middleware.Limiter
	Pingers       map[string]Pinger
	Logger        *logging.SafeLogger
}

// RegisterRoutes mounts the public probes and geography routes on the root
// and every other route behind bearer authentication. Scopes are checked
// inside each handler.
func RegisterRoutes(router gin.IRouter, deps Dependencies) {
	health := NewHealthHandlers(deps.Pingers, deps.Logger)
	geo := NewGeoHandlers(deps.Geo, deps.Logger)
	citizens := NewCitizenHandlers(deps.Citizens, deps.Opinions, deps.Policies, deps.Logger)
	policies := NewPolicyHandlers(deps.Policies, deps.Opinions, deps.Logger)
	opinions := NewOpinionHandlers(deps.Opinions, deps.Logger)
	parties := NewPartyHandlers(deps.Parties, deps.Logger)
	votes := NewVoteHandlers(deps.Votes, deps.Logger)

	router.GET("/health", health.Health)
	router.GET("/ready", health.Ready)
	router.GET("/geo-data", geo.GetGeoData)
	router.GET("/provinces-and-territories", geo.ListProvinces)

	authed := router.Group("")
	authed.Use(deps.Authenticator.Middleware())

	authed.GET("/levels-of-politics", geo.ListLevelsOfPolitics)

	authed.GET("/citizens", citizens.ListCitizens)
	authed.GET("/citizens/politicians", citizens.ListPoliticians)
	authed.GET("/citizens/verify-politician", citizens.ListPendingVerifications)
	authed.GET("/citizens/search", citizens.SearchCitizens)
	authed.GET("/citizens/self", citizens.GetSelf)
	authed.POST("/citizens/self", citizens.RegisterSelf)
	authed.PUT("/citizens/self/postal-code", citizens.UpdatePostalCode)
	authed.POST("/citizens/self/declare-politician", citizens.DeclarePolitician)
	authed.GET("/citizens/self/liked-opinions", citizens.LikedOpinions)
	authed.GET("/citizens/:id", citizens.GetCitizen)
	authed.GET("/citizens/:id/policies", citizens.ListCitizenPolicies)
	authed.PUT("/citizens/:id/verify-politician", citizens.VerifyPolitician)
	authed.DELETE("/citizens/:id", citizens.DeleteCitizen)

	authed.GET("/policies", policies.ListPolicies)
	authed.POST("/policies", policies.CreatePolicy)
	authed.GET("/policies/bookmarks", policies.ListBookmarks)
	authed.GET("/policies/:id", policies.GetPolicy)
	authed.GET("/policies/:id/details", policies.GetPolicyDetails)
	authed.DELETE("/policies/:id", policies.DeletePolicy)
	authed.POST("/policies/:id/bookmark", policies.BookmarkPolicy)
	authed.DELETE("/policies/:id/bookmark", policies.UnbookmarkPolicy)
	authed.GET("/policies/:id/is-bookmarked", policies.IsBookmarked)
	authed.GET("/policies/:id/opinions", policies.ListPolicyOpinions)

	authed.GET("/opinions", opinions.ListOpinions)
	authed.POST("/opinions", opinions.CreateOpinion)
	authed.GET("/opinions/likes/count", opinions.LikeCounts)
	authed.GET("/opinions/:id", opinions.GetOpinion)
	authed.DELETE("/opinions/:id", opinions.DeleteOpinion)
	authed.POST("/opinions/:id/like", opinions.LikeOpinion)
	authed.DELETE("/opinions/:id/like", opinions.UnlikeOpinion)

	authed.GET("/political-parties", parties.ListParties)
	authed.POST("/political-parties", parties.CreateParty)
	authed.GET("/political-parties/:id", parties.GetParty)
	authed.PUT("/political-parties/:id", parties.UpdateParty)
	authed.DELETE("/political-parties/:id", parties.DeleteParty)
	authed.GET("/political-parties/:id/members", parties.ListPartyMembers)
	authed.GET("/political-parties/:id/policies", parties.ListPartyPolicies)

	if deps.VoteLimiter != nil {
		authed.POST("/votes", middleware.RateLimit(deps.VoteLimiter), votes.CastVote)
	} else {
		authed.POST("/votes", votes.CastVote)
	}
	authed.GET("/votes/policies/:id/has-voted", votes.HasVoted)
	authed.GET("/polls/:policyId", votes.GetPoll)
}
