package services

import (
	"context"
	"testing"
	"time"

	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpinionFixture() (*OpinionService, *fakeCitizens, *fakePolicies, *fakeOpinions) {
	citizens := newFakeCitizens()
	policies := newFakePolicies()
	opinions := newFakeOpinions()
	return NewOpinionService(opinions, citizens, policies, &recordingAuditor{}, logging.Logger), citizens, policies, opinions
}

func TestOpinionService_CreateAndList(t *testing.T) {
	svc, citizens, policies, _ := newOpinionFixture()
	ctx := context.Background()
	ada := citizens.add("auth0|ada", "Ada", "Lovelace", models.RoleCitizen)
	policy := policies.add(ada.ID, time.Now().Add(time.Hour))

	opinion, err := svc.Create(ctx, "auth0|ada", models.CreateOpinionRequest{Description: "Agreed", PolicyID: policy.ID})
	require.NoError(t, err)
	assert.Equal(t, ada.ID, opinion.AuthorID)

	byPolicy, err := svc.ByPolicy(ctx, policy.ID)
	require.NoError(t, err)
	require.Len(t, byPolicy, 1)
	assert.Equal(t, opinion.ID, byPolicy[0].ID)

	_, err = svc.ByPolicy(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOpinionService_CreateOnMissingPolicy(t *testing.T) {
	svc, citizens, _, opinions := newOpinionFixture()
	citizens.add("auth0|ada", "Ada", "Lovelace", models.RoleCitizen)

	_, err := svc.Create(context.Background(), "auth0|ada", models.CreateOpinionRequest{Description: "Hm", PolicyID: 42})
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := opinions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "nothing is inserted for a missing policy")
}

func TestOpinionService_Likes(t *testing.T) {
	svc, citizens, policies, _ := newOpinionFixture()
	ctx := context.Background()
	ada := citizens.add("auth0|ada", "Ada", "Lovelace", models.RoleCitizen)
	citizens.add("auth0|grace", "Grace", "Hopper", models.RoleCitizen)
	policy := policies.add(ada.ID, time.Now().Add(time.Hour))
	first, err := svc.Create(ctx, "auth0|ada", models.CreateOpinionRequest{Description: "one", PolicyID: policy.ID})
	require.NoError(t, err)
	second, err := svc.Create(ctx, "auth0|ada", models.CreateOpinionRequest{Description: "two", PolicyID: policy.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Like(ctx, "auth0|ada", first.ID))
	require.NoError(t, svc.Like(ctx, "auth0|ada", first.ID), "liking twice is a no-op")
	require.NoError(t, svc.Like(ctx, "auth0|grace", first.ID))
	assert.ErrorIs(t, svc.Like(ctx, "auth0|ada", 999), models.ErrNotFound)

	counts, err := svc.LikeCounts(ctx, []int64{first.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{first.ID: 2}, counts, "opinions without likes are absent")

	liked, err := svc.LikedOpinionIDs(ctx, "auth0|ada")
	require.NoError(t, err)
	assert.Equal(t, []int64{first.ID}, liked)

	require.NoError(t, svc.Unlike(ctx, "auth0|ada", first.ID))
	require.NoError(t, svc.Unlike(ctx, "auth0|ada", first.ID), "unliking twice is not an error")

	liked, err = svc.LikedOpinionIDs(ctx, "auth0|ada")
	require.NoError(t, err)
	assert.NotNil(t, liked)
	assert.Empty(t, liked)
}

func TestOpinionService_LikeCountsEmpty(t *testing.T) {
	svc, _, _, _ := newOpinionFixture()

	counts, err := svc.LikeCounts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestOpinionService_Delete(t *testing.T) {
	svc, citizens, policies, _ := newOpinionFixture()
	ctx := context.Background()
	ada := citizens.add("auth0|ada", "Ada", "Lovelace", models.RoleCitizen)
	policy := policies.add(ada.ID, time.Now().Add(time.Hour))
	opinion, err := svc.Create(ctx, "auth0|ada", models.CreateOpinionRequest{Description: "bye", PolicyID: policy.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, opinion.ID))
	_, err = svc.Get(ctx, opinion.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
