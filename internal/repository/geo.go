package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/lajospolya/popular-vote/internal/models"
)

// GeoRepository reads the seeded geography and levels of politics
type GeoRepository struct {
	db DBTX
}

func NewGeoRepository(db DBTX) *GeoRepository {
	return &GeoRepository{db: db}
}

func (r *GeoRepository) Levels(ctx context.Context) (levels []models.LevelOfPolitics, err error) {
	ctx, done := track(ctx, "list", "level_of_politics")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT id, name, description FROM level_of_politics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (models.LevelOfPolitics, error) {
		var l models.LevelOfPolitics
		err := row.Scan(&l.ID, &l.Name, &l.Description)
		return l, err
	})
}

func (r *GeoRepository) Provinces(ctx context.Context) (provinces []models.ProvinceAndTerritory, err error) {
	ctx, done := track(ctx, "list", "province_and_territory")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM province_and_territory ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (models.ProvinceAndTerritory, error) {
		var p models.ProvinceAndTerritory
		err := row.Scan(&p.ID, &p.Name)
		return p, err
	})
}

func (r *GeoRepository) Municipalities(ctx context.Context) (municipalities []models.Municipality, err error) {
	ctx, done := track(ctx, "list", "municipality")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT id, name, province_territory_id FROM municipality ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (models.Municipality, error) {
		var m models.Municipality
		err := row.Scan(&m.ID, &m.Name, &m.ProvinceTerritoryID)
		return m, err
	})
}

func (r *GeoRepository) ElectoralDistricts(ctx context.Context) (districts []models.ElectoralDistrict, err error) {
	ctx, done := track(ctx, "list", "electoral_district")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT id, name, province_territory_id, level_of_politics_id
		FROM electoral_district ORDER BY level_of_politics_id, name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (models.ElectoralDistrict, error) {
		var d models.ElectoralDistrict
		err := row.Scan(&d.ID, &d.Name, &d.ProvinceTerritoryID, &d.LevelOfPoliticsID)
		return d, err
	})
}

const postalCodeColumns = `id, name, code, municipality_id, electoral_district_id`

func scanPostalCode(row pgx.Row) (models.PostalCode, error) {
	var pc models.PostalCode
	err := row.Scan(&pc.ID, &pc.Name, &pc.Code, &pc.MunicipalityID, &pc.ElectoralDistrictID)
	return pc, err
}

func (r *GeoRepository) PostalCodes(ctx context.Context) (codes []models.PostalCode, err error) {
	ctx, done := track(ctx, "list", "postal_code")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT `+postalCodeColumns+` FROM postal_code ORDER BY code`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPostalCode)
}

func (r *GeoRepository) PostalCode(ctx context.Context, id int64) (code models.PostalCode, err error) {
	ctx, done := track(ctx, "get", "postal_code")
	defer func() { err = done(err) }()

	return scanPostalCode(r.db.QueryRow(ctx, `SELECT `+postalCodeColumns+` FROM postal_code WHERE id = $1`, id))
}
