package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/lajospolya/popular-vote/internal/testutil"
	"github.com/stretchr/testify/require"
)

const levelFederal, levelProvincial = int64(1), int64(2)

type stores struct {
	pool      *pgxpool.Pool
	citizens  *CitizenRepository
	policies  *PolicyRepository
	opinions  *OpinionRepository
	parties   *PartyRepository
	votes     *VoteRepository
	geography *GeoRepository
}

func setupStores(t *testing.T) *stores {
	pool := testutil.Postgres(t)
	return &stores{
		pool:      pool,
		citizens:  NewCitizenRepository(pool),
		policies:  NewPolicyRepository(pool),
		opinions:  NewOpinionRepository(pool),
		parties:   NewPartyRepository(pool),
		votes:     NewVoteRepository(pool),
		geography: NewGeoRepository(pool),
	}
}

func (s *stores) citizen(t *testing.T, given, surname string) models.Citizen {
	t.Helper()
	c, err := s.citizens.Create(context.Background(), models.Citizen{
		GivenName: given,
		Surname:   surname,
		AuthID:    fmt.Sprintf("auth0|%s-%s-%d", given, surname, time.Now().UnixNano()),
	})
	require.NoError(t, err)
	return c
}

// politician registers, declares and verifies a citizen at a level
func (s *stores) politician(t *testing.T, given, surname string, level int64, partyID *int64) (models.Citizen, models.CitizenPoliticalDetails) {
	t.Helper()
	ctx := context.Background()
	c := s.citizen(t, given, surname)
	details, err := s.citizens.DeclarePolitician(ctx, models.CitizenPoliticalDetails{
		CitizenID:         c.ID,
		LevelOfPoliticsID: level,
		PoliticalPartyID:  partyID,
	})
	require.NoError(t, err)
	c, err = s.citizens.PromoteToPolitician(ctx, c.ID)
	require.NoError(t, err)
	return c, details
}

func (s *stores) policy(t *testing.T, publisher models.Citizen, details models.CitizenPoliticalDetails, closeDate time.Time, coAuthors ...int64) models.Policy {
	t.Helper()
	p, _, err := s.policies.Create(context.Background(), models.NewPolicy{
		Description:               "Policy by " + publisher.FullName(),
		PublisherCitizenID:        publisher.ID,
		LevelOfPoliticsID:         details.LevelOfPoliticsID,
		CitizenPoliticalDetailsID: details.ID,
		CloseDate:                 closeDate,
		CoAuthorCitizenIDs:        coAuthors,
	})
	require.NoError(t, err)
	return p
}

func (s *stores) party(t *testing.T, name string, level int64, province *int64) models.PoliticalParty {
	t.Helper()
	p, err := s.parties.Create(context.Background(), models.PoliticalParty{
		DisplayName:            name,
		HexColor:               "#D71920",
		LevelOfPoliticsID:      level,
		ProvinceAndTerritoryID: province,
	})
	require.NoError(t, err)
	return p
}

func int64Ptr(v int64) *int64 { return &v }
