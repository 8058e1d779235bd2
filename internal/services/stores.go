package services

import (
	"context"

	"github.com/lajospolya/popular-vote/internal/models"
)

// The stores below are satisfied by the repository package. Services
// depend on them rather than on the concrete stores so tests can use
// in-memory fakes.

type CitizenStore interface {
	List(ctx context.Context) ([]models.Citizen, error)
	GetByID(ctx context.Context, id int64) (models.Citizen, error)
	GetByAuthID(ctx context.Context, authID string) (models.Citizen, error)
	Search(ctx context.Context, givenName, surname string) ([]models.Citizen, error)
	Profile(ctx context.Context, id int64) (models.CitizenProfile, error)
	ProfileByAuthID(ctx context.Context, authID string) (models.CitizenProfile, error)
	Create(ctx context.Context, c models.Citizen) (models.Citizen, error)
	UpdatePostalCode(ctx context.Context, id, postalCodeID int64) (models.Citizen, error)
	SoftDelete(ctx context.Context, id int64) error
	DeclarePolitician(ctx context.Context, details models.CitizenPoliticalDetails) (models.CitizenPoliticalDetails, error)
	PoliticalDetails(ctx context.Context, citizenID int64) (models.CitizenPoliticalDetails, error)
	PendingVerifications(ctx context.Context) ([]models.Citizen, error)
	PromoteToPolitician(ctx context.Context, id int64) (models.Citizen, error)
	Politicians(ctx context.Context, levelOfPoliticsID *int64, req models.PageRequest) (models.Page[models.Citizen], error)
	PartyMembers(ctx context.Context, partyID int64) ([]models.Citizen, error)
}

// CitizenLookup resolves the caller and other citizens
type CitizenLookup interface {
	GetByID(ctx context.Context, id int64) (models.Citizen, error)
	GetByAuthID(ctx context.Context, authID string) (models.Citizen, error)
}

// PoliticianLookup also exposes declared political details
type PoliticianLookup interface {
	CitizenLookup
	PoliticalDetails(ctx context.Context, citizenID int64) (models.CitizenPoliticalDetails, error)
}

type PolicyStore interface {
	List(ctx context.Context, viewerID int64, levelOfPoliticsID *int64, req models.PageRequest) (models.Page[models.PolicySummary], error)
	Bookmarks(ctx context.Context, citizenID int64, req models.PageRequest) (models.Page[models.PolicySummary], error)
	ByPublisher(ctx context.Context, citizenID int64, req models.PageRequest) (models.Page[models.Policy], error)
	ByParty(ctx context.Context, partyID int64) ([]models.Policy, error)
	Get(ctx context.Context, id int64) (models.Policy, error)
	CoAuthors(ctx context.Context, policyID int64) ([]models.Citizen, error)
	Details(ctx context.Context, id int64) (models.PolicyDetails, error)
	Create(ctx context.Context, np models.NewPolicy) (models.Policy, []models.Citizen, error)
	Delete(ctx context.Context, id int64) error
	Bookmark(ctx context.Context, citizenID, policyID int64) error
	Unbookmark(ctx context.Context, citizenID, policyID int64) error
	IsBookmarked(ctx context.Context, citizenID, policyID int64) (bool, error)
}

// PolicyLookup checks that a policy exists
type PolicyLookup interface {
	Get(ctx context.Context, id int64) (models.Policy, error)
}

type OpinionStore interface {
	List(ctx context.Context) ([]models.Opinion, error)
	ByPolicy(ctx context.Context, policyID int64) ([]models.OpinionDetail, error)
	Get(ctx context.Context, id int64) (models.Opinion, error)
	Create(ctx context.Context, o models.Opinion) (models.Opinion, error)
	Delete(ctx context.Context, id int64) error
	Like(ctx context.Context, citizenID, opinionID int64) error
	Unlike(ctx context.Context, citizenID, opinionID int64) error
	LikedOpinionIDs(ctx context.Context, citizenID int64) ([]int64, error)
	LikeCounts(ctx context.Context, opinionIDs []int64) (map[int64]int64, error)
}

type PartyStore interface {
	All(ctx context.Context, filter models.PartyFilter) ([]models.PoliticalParty, error)
	List(ctx context.Context, filter models.PartyFilter, req models.PageRequest) (models.Page[models.PoliticalParty], error)
	Get(ctx context.Context, id int64) (models.PoliticalParty, error)
	Create(ctx context.Context, p models.PoliticalParty) (models.PoliticalParty, error)
	Update(ctx context.Context, p models.PoliticalParty) (models.PoliticalParty, error)
	Delete(ctx context.Context, id int64) error
}

// PartyMembership lists members and policies of a party
type PartyMembership interface {
	PartyMembers(ctx context.Context, partyID int64) ([]models.Citizen, error)
}

type PartyPolicies interface {
	ByParty(ctx context.Context, partyID int64) ([]models.Policy, error)
}

type VoteStore interface {
	Cast(ctx context.Context, citizenID, policyID, selectionID int64) (models.VoteResult, error)
	HasVoted(ctx context.Context, citizenID, policyID int64) (bool, error)
	Poll(ctx context.Context, policyID int64) ([]models.PollSelectionCount, error)
	Selection(ctx context.Context, id int64) (models.PollSelection, error)
}

type GeoStore interface {
	Levels(ctx context.Context) ([]models.LevelOfPolitics, error)
	Provinces(ctx context.Context) ([]models.ProvinceAndTerritory, error)
	Municipalities(ctx context.Context) ([]models.Municipality, error)
	ElectoralDistricts(ctx context.Context) ([]models.ElectoralDistrict, error)
	PostalCodes(ctx context.Context) ([]models.PostalCode, error)
	PostalCode(ctx context.Context, id int64) (models.PostalCode, error)
}

// PostalCodeLookup checks that a postal code exists
type PostalCodeLookup interface {
	PostalCode(ctx context.Context, id int64) (models.PostalCode, error)
}
