package models

import "time"

// Role is the citizen's standing in the system
type Role string

const (
	RoleCitizen    Role = "CITIZEN"
	RolePolitician Role = "POLITICIAN"
)

// Citizen is a registered user, keyed externally by the identity
// provider's subject (AuthID).
type Citizen struct {
	ID           int64
	GivenName    string
	MiddleName   *string
	Surname      string
	Role         Role
	AuthID       string
	PostalCodeID *int64
	CreationDate time.Time
}

// FullName joins given and surname for display
func (c *Citizen) FullName() string {
	return c.GivenName + " " + c.Surname
}

// CitizenPoliticalDetails is recorded when a citizen declares themselves a
// politician.
type CitizenPoliticalDetails struct {
	ID                  int64
	CitizenID           int64
	LevelOfPoliticsID   int64
	ElectoralDistrictID *int64
	PoliticalPartyID    *int64
}

// CitizenProfile is the joined view behind profile and self endpoints
type CitizenProfile struct {
	Citizen
	PoliticalPartyID      *int64
	LevelOfPoliticsName   *string
	ElectoralDistrictName *string
	PostalCode            *PostalCode
	PolicyCount           int64
	VoteCount             int64
	VerificationPending   bool
}

// CitizenResponse is the public representation of a citizen
type CitizenResponse struct {
	ID         int64   `json:"id"`
	GivenName  string  `json:"givenName"`
	MiddleName *string `json:"middleName"`
	Surname    string  `json:"surname"`
	Role       Role    `json:"role"`
}

// CitizenProfileResponse is returned by GET /citizens/{id}
type CitizenProfileResponse struct {
	CitizenResponse
	PoliticalPartyID      *int64      `json:"politicalPartyId"`
	LevelOfPoliticsName   *string     `json:"levelOfPoliticsName"`
	ElectoralDistrictName *string     `json:"electoralDistrictName"`
	PolicyCount           int64       `json:"policyCount"`
	VoteCount             int64       `json:"voteCount"`
	PostalCodeID          *int64      `json:"postalCodeId"`
	PostalCode            *PostalCode `json:"postalCode"`
}

// CitizenSelfResponse is returned by GET /citizens/self
type CitizenSelfResponse struct {
	CitizenProfileResponse
	IsVerificationPending bool `json:"isVerificationPending"`
}

// CreateCitizenRequest is the body of POST /citizens/self
type CreateCitizenRequest struct {
	GivenName  string  `json:"givenName" binding:"required"`
	MiddleName *string `json:"middleName"`
	Surname    string  `json:"surname" binding:"required"`
}

// UpdatePostalCodeRequest is the body of PUT /citizens/self/postal-code
type UpdatePostalCodeRequest struct {
	PostalCodeID int64 `json:"postalCodeId" binding:"required"`
}

// DeclarePoliticianRequest is the body of POST /citizens/self/declare-politician
type DeclarePoliticianRequest struct {
	LevelOfPoliticsID   int64  `json:"levelOfPoliticsId" binding:"required"`
	ElectoralDistrictID *int64 `json:"electoralDistrictId"`
	PoliticalPartyID    *int64 `json:"politicalPartyId"`
}

// ToResponse converts a Citizen to CitizenResponse
func (c *Citizen) ToResponse() CitizenResponse {
	return CitizenResponse{
		ID:         c.ID,
		GivenName:  c.GivenName,
		MiddleName: c.MiddleName,
		Surname:    c.Surname,
		Role:       c.Role,
	}
}

// ToResponse converts a CitizenProfile to CitizenProfileResponse
func (p *CitizenProfile) ToResponse() CitizenProfileResponse {
	return CitizenProfileResponse{
		CitizenResponse:       p.Citizen.ToResponse(),
		PoliticalPartyID:      p.PoliticalPartyID,
		LevelOfPoliticsName:   p.LevelOfPoliticsName,
		ElectoralDistrictName: p.ElectoralDistrictName,
		PolicyCount:           p.PolicyCount,
		VoteCount:             p.VoteCount,
		PostalCodeID:          p.PostalCodeID,
		PostalCode:            p.PostalCode,
	}
}

// ToSelfResponse converts a CitizenProfile to CitizenSelfResponse
func (p *CitizenProfile) ToSelfResponse() CitizenSelfResponse {
	return CitizenSelfResponse{
		CitizenProfileResponse: p.ToResponse(),
		IsVerificationPending:  p.VerificationPending,
	}
}
