package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/models"
	"go.uber.org/zap"
)

// GeoService serves the read-only geography and levels of politics
type GeoService struct {
	store  GeoStore
	cache  Cache
	ttl    time.Duration
	logger *logging.SafeLogger
}

// NewGeoService creates a geography service caching the nested view for ttl
func NewGeoService(store GeoStore, cache Cache, ttl time.Duration, logger *logging.SafeLogger) *GeoService {
	return &GeoService{store: store, cache: cache, ttl: ttl, logger: logger}
}

func (s *GeoService) Levels(ctx context.Context) ([]models.LevelOfPolitics, error) {
	levels, err := s.store.Levels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels of politics: %w", err)
	}
	return levels, nil
}

func (s *GeoService) Provinces(ctx context.Context) ([]models.ProvinceAndTerritory, error) {
	provinces, err := s.store.Provinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list provinces and territories: %w", err)
	}
	return provinces, nil
}

// GeoData returns the nested geography, read through the cache
func (s *GeoService) GeoData(ctx context.Context) (models.GeoData, error) {
	var geo models.GeoData
	if s.cache.GetJSON(ctx, geoDataCacheKey, &geo) {
		return geo, nil
	}

	provinces, err := s.store.Provinces(ctx)
	if err != nil {
		return geo, fmt.Errorf("failed to list provinces: %w", err)
	}
	municipalities, err := s.store.Municipalities(ctx)
	if err != nil {
		return geo, fmt.Errorf("failed to list municipalities: %w", err)
	}
	districts, err := s.store.ElectoralDistricts(ctx)
	if err != nil {
		return geo, fmt.Errorf("failed to list electoral districts: %w", err)
	}
	postalCodes, err := s.store.PostalCodes(ctx)
	if err != nil {
		return geo, fmt.Errorf("failed to list postal codes: %w", err)
	}

	geo = models.BuildGeoData(provinces, municipalities, districts, postalCodes)
	s.cache.SetJSON(ctx, geoDataCacheKey, geo, s.ttl)
	s.logger.Debug("geo data rebuilt",
		zap.Int("provinces", len(provinces)),
		zap.Int("postal_codes", len(postalCodes)))
	return geo, nil
}
