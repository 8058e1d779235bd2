package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/middleware"
	"github.com/lajospolya/popular-vote/internal/models"
)

// GeoHandlers serves the geography reference data
type GeoHandlers struct {
	geo    GeoAPI
	logger *logging.SafeLogger
}

func NewGeoHandlers(geo GeoAPI, logger *logging.SafeLogger) *GeoHandlers {
	return &GeoHandlers{geo: geo, logger: logger}
}

// GetGeoData godoc
// @Summary Provinces with their municipalities, postal codes and districts
// @Tags geography
// @Produce json
// @Success 200 {object} models.GeoData
// @Router /geo-data [get]
func (h *GeoHandlers) GetGeoData(c *gin.Context) {
	data, err := h.geo.GeoData(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// ListProvinces godoc
// @Summary List provinces and territories
// @Tags geography
// @Produce json
// @Success 200 {array} models.ProvinceAndTerritory
// @Router /provinces-and-territories [get]
func (h *GeoHandlers) ListProvinces(c *gin.Context) {
	provinces, err := h.geo.Provinces(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, provinces)
}

// ListLevelsOfPolitics godoc
// @Summary List levels of politics
// @Tags geography
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.LevelOfPolitics
// @Router /levels-of-politics [get]
func (h *GeoHandlers) ListLevelsOfPolitics(c *gin.Context) {
	if !middleware.RequireScope(c, models.ScopeReadParties) {
		return
	}
	levels, err := h.geo.Levels(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, levels)
}
