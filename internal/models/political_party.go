package models

import (
	"fmt"
	"regexp"
	"time"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// PoliticalParty is reference data scoped to a level of politics and,
// optionally, a province or territory.
type PoliticalParty struct {
	ID                     int64
	DisplayName            string
	HexColor               string
	Description            *string
	LevelOfPoliticsID      int64
	ProvinceAndTerritoryID *int64
	CreationDate           time.Time
}

// PartyFilter narrows party listings; nil fields do not filter
type PartyFilter struct {
	LevelOfPoliticsID      *int64
	ProvinceAndTerritoryID *int64
}

// PoliticalPartyRequest is the body of POST and PUT /political-parties
type PoliticalPartyRequest struct {
	DisplayName            string  `json:"displayName" binding:"required"`
	HexColor               string  `json:"hexColor" binding:"required"`
	Description            *string `json:"description"`
	LevelOfPoliticsID      int64   `json:"levelOfPoliticsId" binding:"required"`
	ProvinceAndTerritoryID *int64  `json:"provinceAndTerritoryId"`
}

// Validate checks the fields binding tags cannot express
func (r *PoliticalPartyRequest) Validate() error {
	if !hexColorPattern.MatchString(r.HexColor) {
		return fmt.Errorf("%w: hexColor must look like #RRGGBB", ErrInvalidInput)
	}
	return nil
}

// ToParty converts the request into a party with the given id
func (r *PoliticalPartyRequest) ToParty(id int64) PoliticalParty {
	return PoliticalParty{
		ID:                     id,
		DisplayName:            r.DisplayName,
		HexColor:               r.HexColor,
		Description:            r.Description,
		LevelOfPoliticsID:      r.LevelOfPoliticsID,
		ProvinceAndTerritoryID: r.ProvinceAndTerritoryID,
	}
}

type PoliticalPartyResponse struct {
	ID                     int64   `json:"id"`
	DisplayName            string  `json:"displayName"`
	HexColor               string  `json:"hexColor"`
	Description            *string `json:"description"`
	LevelOfPoliticsID      int64   `json:"levelOfPoliticsId"`
	ProvinceAndTerritoryID *int64  `json:"provinceAndTerritoryId"`
}

// ToResponse converts a PoliticalParty to PoliticalPartyResponse
func (p PoliticalParty) ToResponse() PoliticalPartyResponse {
	return PoliticalPartyResponse{
		ID:                     p.ID,
		DisplayName:            p.DisplayName,
		HexColor:               p.HexColor,
		Description:            p.Description,
		LevelOfPoliticsID:      p.LevelOfPoliticsID,
		ProvinceAndTerritoryID: p.ProvinceAndTerritoryID,
	}
}
