package repository

import (
	"context"
	"testing"

	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitizenRepository_CreateAndGet(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	created, err := s.citizens.Create(ctx, models.Citizen{GivenName: "Ada", Surname: "Lovelace", AuthID: "auth0|ada"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCitizen, created.Role)
	assert.NotZero(t, created.ID)

	byID, err := s.citizens.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)
	assert.Equal(t, "Ada", byID.GivenName)
	assert.Nil(t, byID.MiddleName)

	byAuth, err := s.citizens.GetByAuthID(ctx, "auth0|ada")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byAuth.ID)

	_, err = s.citizens.GetByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCitizenRepository_DuplicateAuthID(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	_, err := s.citizens.Create(ctx, models.Citizen{GivenName: "Ada", Surname: "Lovelace", AuthID: "auth0|dup"})
	require.NoError(t, err)

	_, err = s.citizens.Create(ctx, models.Citizen{GivenName: "Ada", Surname: "Byron", AuthID: "auth0|dup"})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)
}

func TestCitizenRepository_SoftDelete(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	c, err := s.citizens.Create(ctx, models.Citizen{GivenName: "Grace", Surname: "Hopper", AuthID: "auth0|grace"})
	require.NoError(t, err)

	require.NoError(t, s.citizens.SoftDelete(ctx, c.ID))

	_, err = s.citizens.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound, "deleted citizens are not found")
	_, err = s.citizens.GetByAuthID(ctx, "auth0|grace")
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = s.citizens.SoftDelete(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound, "deleting twice is not found")

	again, err := s.citizens.Create(ctx, models.Citizen{GivenName: "Grace", Surname: "Hopper", AuthID: "auth0|grace"})
	require.NoError(t, err, "a deleted subject may register again")
	assert.NotEqual(t, c.ID, again.ID)

	all, err := s.citizens.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCitizenRepository_Search(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	s.citizen(t, "Pierre", "Trudeau")
	s.citizen(t, "Justin", "Trudeau")
	s.citizen(t, "Jean", "Chretien")

	found, err := s.citizens.Search(ctx, "", "trud")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.citizens.Search(ctx, "jus", "Trudeau")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Justin", found[0].GivenName)

	found, err = s.citizens.Search(ctx, "", "%")
	require.NoError(t, err)
	assert.Empty(t, found, "a percent sign matches literally")

	found, err = s.citizens.Search(ctx, "J_an", "")
	require.NoError(t, err)
	assert.Empty(t, found, "an underscore matches literally")
}

func TestLikePrefix(t *testing.T) {
	assert.Equal(t, "%", likePrefix(""))
	assert.Equal(t, "trud%", likePrefix("trud"))
	assert.Equal(t, `50\%\_off\\%`, likePrefix(`50%_off\`))
}

func TestCitizenRepository_UpdatePostalCode(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	c := s.citizen(t, "Ada", "Lovelace")

	updated, err := s.citizens.UpdatePostalCode(ctx, c.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, updated.PostalCodeID)
	assert.Equal(t, int64(1), *updated.PostalCodeID)

	_, err = s.citizens.UpdatePostalCode(ctx, c.ID, 9999)
	assert.ErrorIs(t, err, models.ErrNotFound, "unknown postal code violates the foreign key")

	profile, err := s.citizens.Profile(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.PostalCode)
	assert.Equal(t, "M5V", profile.PostalCode.Code)
}

func TestCitizenRepository_PoliticianVerification(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	c := s.citizen(t, "Jagmeet", "Singh")

	_, err := s.citizens.PromoteToPolitician(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState, "cannot verify without a declaration")

	details, err := s.citizens.DeclarePolitician(ctx, models.CitizenPoliticalDetails{
		CitizenID:           c.ID,
		LevelOfPoliticsID:   levelFederal,
		ElectoralDistrictID: int64Ptr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, details.CitizenID)

	redeclared, err := s.citizens.DeclarePolitician(ctx, models.CitizenPoliticalDetails{
		CitizenID:         c.ID,
		LevelOfPoliticsID: levelProvincial,
	})
	require.NoError(t, err)
	assert.Equal(t, details.ID, redeclared.ID, "declaring again updates the same details row")
	assert.Equal(t, levelProvincial, redeclared.LevelOfPoliticsID)

	pending, err := s.citizens.PendingVerifications(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	self, err := s.citizens.ProfileByAuthID(ctx, c.AuthID)
	require.NoError(t, err)
	assert.True(t, self.VerificationPending)
	require.NotNil(t, self.LevelOfPoliticsName)
	assert.Equal(t, "Provincial", *self.LevelOfPoliticsName)

	promoted, err := s.citizens.PromoteToPolitician(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RolePolitician, promoted.Role)

	pending, err = s.citizens.PendingVerifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = s.citizens.PromoteToPolitician(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState, "a politician cannot be verified twice")
}

func TestCitizenRepository_Politicians(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	federal1, _ := s.politician(t, "Federal", "One", levelFederal, nil)
	federal2, _ := s.politician(t, "Federal", "Two", levelFederal, nil)
	s.politician(t, "Provincial", "One", levelProvincial, nil)
	s.citizen(t, "Plain", "Citizen")

	page, err := s.citizens.Politicians(ctx, nil, models.PageRequest{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)

	page, err = s.citizens.Politicians(ctx, int64Ptr(levelFederal), models.PageRequest{Page: 0, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements, "filter applies to the count")
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.Equal(t, federal2.ID, page.Content[0].ID, "newest first")

	page, err = s.citizens.Politicians(ctx, int64Ptr(levelFederal), models.PageRequest{Page: 1, Size: 1})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, federal1.ID, page.Content[0].ID)
}

func TestCitizenRepository_PartyMembers(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	party := s.party(t, "Liberal", levelFederal, nil)
	member, _ := s.politician(t, "Mark", "Carney", levelFederal, &party.ID)
	s.politician(t, "Pierre", "Poilievre", levelFederal, nil)

	members, err := s.citizens.PartyMembers(ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, member.ID, members[0].ID)
}

func TestCitizenRepository_PoliticiansTieBreak(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	var created []int64
	for i := 0; i < 6; i++ {
		c, _ := s.politician(t, "Member", string(rune('A'+i)), levelProvincial, nil)
		created = append(created, c.ID)
	}
	s.politician(t, "Federal", "Member", levelFederal, nil)

	_, err := s.pool.Exec(ctx, `UPDATE citizen SET creation_date = '2024-06-01T12:00:00Z'`)
	require.NoError(t, err)

	list := func(page int) []int64 {
		p, err := s.citizens.Politicians(ctx, int64Ptr(levelProvincial), models.PageRequest{Page: page, Size: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(6), p.TotalElements)
		ids := make([]int64, 0, len(p.Content))
		for _, c := range p.Content {
			ids = append(ids, c.ID)
		}
		return ids
	}

	assert.Equal(t, []int64{created[5], created[4]}, list(0))
	assert.Equal(t, []int64{created[3], created[2]}, list(1))
	assert.Equal(t, []int64{created[1], created[0]}, list(2))
	assert.Equal(t, list(1), list(1), "identical requests return the same order")
}
