package handlers

import (
	"context"

	"github.com/lajospolya/popular-vote/internal/models"
)

// Stubs embed the interface so a test only implements what its route
// calls. Anything else panics on the nil embedded value.

type stubCitizens struct {
	CitizenAPI
	list     func() ([]models.Citizen, error)
	get      func(id int64) (models.CitizenProfile, error)
	self     func(authID string) (models.CitizenProfile, error)
	register func(authID string, req models.CreateCitizenRequest) (models.Citizen, error)
	declare  func(authID string, req models.DeclarePoliticianRequest) error
	verify   func(id int64) (models.CitizenProfile, error)
	search   func(givenName, surname string) ([]models.Citizen, error)
}

func (s *stubCitizens) List(context.Context) ([]models.Citizen, error) { return s.list() }
func (s *stubCitizens) Get(_ context.Context, id int64) (models.CitizenProfile, error) {
	return s.get(id)
}
func (s *stubCitizens) Self(_ context.Context, authID string) (models.CitizenProfile, error) {
	return s.self(authID)
}
func (s *stubCitizens) Register(_ context.Context, authID string, req models.CreateCitizenRequest) (models.Citizen, error) {
	return s.register(authID, req)
}
func (s *stubCitizens) DeclarePolitician(_ context.Context, authID string, req models.DeclarePoliticianRequest) error {
	return s.declare(authID, req)
}
func (s *stubCitizens) VerifyPolitician(_ context.Context, id int64) (models.CitizenProfile, error) {
	return s.verify(id)
}
func (s *stubCitizens) Search(_ context.Context, givenName, surname string) ([]models.Citizen, error) {
	return s.search(givenName, surname)
}

type stubPolicies struct {
	PolicyAPI
	list     func(authID string, level *int64, req models.PageRequest) (models.Page[models.PolicySummary], error)
	create   func(authID string, req models.CreatePolicyRequest) (models.Policy, []models.Citizen, error)
	bookmark func(authID string, policyID int64) error
}

func (s *stubPolicies) List(_ context.Context, authID string, level *int64, req models.PageRequest) (models.Page[models.PolicySummary], error) {
	return s.list(authID, level, req)
}
func (s *stubPolicies) Create(_ context.Context, authID string, req models.CreatePolicyRequest) (models.Policy, []models.Citizen, error) {
	return s.create(authID, req)
}
func (s *stubPolicies) Bookmark(_ context.Context, authID string, policyID int64) error {
	return s.bookmark(authID, policyID)
}

type stubOpinions struct {
	OpinionAPI
	liked      func(authID string) ([]int64, error)
	likeCounts func(ids []int64) (map[int64]int64, error)
	like       func(authID string, opinionID int64) error
}

func (s *stubOpinions) LikedOpinionIDs(_ context.Context, authID string) ([]int64, error) {
	return s.liked(authID)
}
func (s *stubOpinions) LikeCounts(_ context.Context, ids []int64) (map[int64]int64, error) {
	return s.likeCounts(ids)
}
func (s *stubOpinions) Like(_ context.Context, authID string, opinionID int64) error {
	return s.like(authID, opinionID)
}

type stubParties struct {
	PartyAPI
	all    func(filter models.PartyFilter) ([]models.PoliticalParty, error)
	page   func(filter models.PartyFilter, req models.PageRequest) (models.Page[models.PoliticalParty], error)
	create func(req models.PoliticalPartyRequest) (models.PoliticalParty, error)
}

func (s *stubParties) All(_ context.Context, filter models.PartyFilter) ([]models.PoliticalParty, error) {
	return s.all(filter)
}
func (s *stubParties) List(_ context.Context, filter models.PartyFilter, req models.PageRequest) (models.Page[models.PoliticalParty], error) {
	return s.page(filter, req)
}
func (s *stubParties) Create(_ context.Context, req models.PoliticalPartyRequest) (models.PoliticalParty, error) {
	return s.create(req)
}

type stubVotes struct {
	VoteAPI
	cast     func(authID string, req models.CastVoteRequest) (models.VoteResult, error)
	hasVoted func(authID string, policyID int64) (bool, error)
	poll     func(policyID int64) ([]models.PollSelectionCount, error)
}

func (s *stubVotes) Cast(_ context.Context, authID string, req models.CastVoteRequest) (models.VoteResult, error) {
	return s.cast(authID, req)
}
func (s *stubVotes) HasVoted(_ context.Context, authID string, policyID int64) (bool, error) {
	return s.hasVoted(authID, policyID)
}
func (s *stubVotes) Poll(_ context.Context, policyID int64) ([]models.PollSelectionCount, error) {
	return s.poll(policyID)
}

type stubGeo struct {
	GeoAPI
	data   models.GeoData
	levels []models.LevelOfPolitics
}

func (s *stubGeo) GeoData(context.Context) (models.GeoData, error)          { return s.data, nil }
func (s *stubGeo) Levels(context.Context) ([]models.LevelOfPolitics, error) { return s.levels, nil }

type denyAll struct{ calls int }

func (d *denyAll) Allow(context.Context, string) bool {
	d.calls++
	return false
}
