package models

import "time"

// Policy is a proposal open for opinions and voting until CloseDate
type Policy struct {
	ID                        int64
	Description               string
	PublisherCitizenID        int64
	LevelOfPoliticsID         int64
	CitizenPoliticalDetailsID int64
	CloseDate                 time.Time
	CreationDate              time.Time
}

// IsOpen reports whether votes are still accepted at the given instant
func (p *Policy) IsOpen(now time.Time) bool {
	return now.Before(p.CloseDate)
}

// PolicySummary is a list row enriched for the requesting citizen
type PolicySummary struct {
	Policy
	PublisherName string
	IsBookmarked  bool
}

// PolicyDetails is the full view served at /policies/{id}/details
type PolicyDetails struct {
	Policy
	PublisherName string
	CoAuthors     []Citizen
	Opinions      []OpinionDetail
}

// NewPolicy is what the service hands to the store on creation
type NewPolicy struct {
	Description               string
	PublisherCitizenID        int64
	LevelOfPoliticsID         int64
	CitizenPoliticalDetailsID int64
	CloseDate                 time.Time
	CoAuthorCitizenIDs        []int64
}

// CreatePolicyRequest is the body of POST /policies
type CreatePolicyRequest struct {
	Description        string    `json:"description" binding:"required"`
	CoAuthorCitizenIDs []int64   `json:"coAuthorCitizenIds"`
	CloseDate          time.Time `json:"closeDate" binding:"required"`
}

type PolicyResponse struct {
	ID                        int64             `json:"id"`
	Description               string            `json:"description"`
	PublisherCitizenID        int64             `json:"publisherCitizenId"`
	LevelOfPoliticsID         int64             `json:"levelOfPoliticsId"`
	CitizenPoliticalDetailsID int64             `json:"citizenPoliticalDetailsId"`
	CloseDate                 time.Time         `json:"closeDate"`
	CreationDate              time.Time         `json:"creationDate"`
	CoAuthorCitizens          []CitizenResponse `json:"coAuthorCitizens"`
}

type PolicySummaryResponse struct {
	ID                        int64     `json:"id"`
	Description               string    `json:"description"`
	PublisherCitizenID        int64     `json:"publisherCitizenId"`
	LevelOfPoliticsID         int64     `json:"levelOfPoliticsId"`
	CitizenPoliticalDetailsID int64     `json:"citizenPoliticalDetailsId"`
	PublisherName             string    `json:"publisherName"`
	IsBookmarked              bool      `json:"isBookmarked"`
	CloseDate                 time.Time `json:"closeDate"`
	CreationDate              time.Time `json:"creationDate"`
}

type PolicyDetailsResponse struct {
	ID                 int64                   `json:"id"`
	Description        string                  `json:"description"`
	PublisherCitizenID int64                   `json:"publisherCitizenId"`
	PublisherName      string                  `json:"publisherName"`
	LevelOfPoliticsID  int64                   `json:"levelOfPoliticsId"`
	CoAuthorCitizens   []CitizenResponse       `json:"coAuthorCitizens"`
	Opinions           []OpinionDetailResponse `json:"opinions"`
	CloseDate          time.Time               `json:"closeDate"`
	CreationDate       time.Time               `json:"creationDate"`
}

// IsBookmarkedResponse is returned by GET /policies/{id}/is-bookmarked
type IsBookmarkedResponse struct {
	IsBookmarked bool `json:"isBookmarked"`
}

// ToResponse converts a Policy and its co-authors to PolicyResponse
func (p *Policy) ToResponse(coAuthors []Citizen) PolicyResponse {
	resp := PolicyResponse{
		ID:                        p.ID,
		Description:               p.Description,
		PublisherCitizenID:        p.PublisherCitizenID,
		LevelOfPoliticsID:         p.LevelOfPoliticsID,
		CitizenPoliticalDetailsID: p.CitizenPoliticalDetailsID,
		CloseDate:                 p.CloseDate,
		CreationDate:              p.CreationDate,
		CoAuthorCitizens:          make([]CitizenResponse, 0, len(coAuthors)),
	}
	for i := range coAuthors {
		resp.CoAuthorCitizens = append(resp.CoAuthorCitizens, coAuthors[i].ToResponse())
	}
	return resp
}

// ToResponse converts a PolicySummary to PolicySummaryResponse
func (s PolicySummary) ToResponse() PolicySummaryResponse {
	return PolicySummaryResponse{
		ID:                        s.ID,
		Description:               s.Description,
		PublisherCitizenID:        s.PublisherCitizenID,
		LevelOfPoliticsID:         s.LevelOfPoliticsID,
		CitizenPoliticalDetailsID: s.CitizenPoliticalDetailsID,
		PublisherName:             s.PublisherName,
		IsBookmarked:              s.IsBookmarked,
		CloseDate:                 s.CloseDate,
		CreationDate:              s.CreationDate,
	}
}

// ToResponse converts PolicyDetails to PolicyDetailsResponse
func (d *PolicyDetails) ToResponse() PolicyDetailsResponse {
	resp := PolicyDetailsResponse{
		ID:                 d.ID,
		Description:        d.Description,
		PublisherCitizenID: d.PublisherCitizenID,
		PublisherName:      d.PublisherName,
		LevelOfPoliticsID:  d.LevelOfPoliticsID,
		CoAuthorCitizens:   make([]CitizenResponse, 0, len(d.CoAuthors)),
		Opinions:           make([]OpinionDetailResponse, 0, len(d.Opinions)),
		CloseDate:          d.CloseDate,
		CreationDate:       d.CreationDate,
	}
	for i := range d.CoAuthors {
		resp.CoAuthorCitizens = append(resp.CoAuthorCitizens, d.CoAuthors[i].ToResponse())
	}
	for _, o := range d.Opinions {
		resp.Opinions = append(resp.Opinions, o.ToResponse())
	}
	return resp
}
