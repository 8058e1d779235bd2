package repository

import (
	"context"
	"testing"

	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoRepository_SeededData(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	levels, err := s.geography.Levels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, "Federal", levels[0].Name)

	provinces, err := s.geography.Provinces(ctx)
	require.NoError(t, err)
	assert.Len(t, provinces, 4)

	municipalities, err := s.geography.Municipalities(ctx)
	require.NoError(t, err)
	districts, err := s.geography.ElectoralDistricts(ctx)
	require.NoError(t, err)
	codes, err := s.geography.PostalCodes(ctx)
	require.NoError(t, err)

	geo := models.BuildGeoData(provinces, municipalities, districts, codes)
	assert.Len(t, geo.ProvincesAndTerritories, 4)

	code, err := s.geography.PostalCode(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "K2P", code.Code)

	_, err = s.geography.PostalCode(ctx, 404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
