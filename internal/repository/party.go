package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lajospolya/popular-vote/internal/models"
)

const partyColumns = `id, display_name, hex_color, description, level_of_politics_id, province_and_territory_id, creation_date`

func scanParty(row pgx.Row) (models.PoliticalParty, error) {
	var p models.PoliticalParty
	err := row.Scan(&p.ID, &p.DisplayName, &p.HexColor, &p.Description, &p.LevelOfPoliticsID, &p.ProvinceAndTerritoryID, &p.CreationDate)
	return p, err
}

// PartyRepository stores political parties
type PartyRepository struct {
	db DBTX
}

func NewPartyRepository(db DBTX) *PartyRepository {
	return &PartyRepository{db: db}
}

// partyWhere renders the filter shared by the count and page queries
func partyWhere(filter models.PartyFilter) (string, []any) {
	where := ` WHERE TRUE`
	var args []any
	if filter.LevelOfPoliticsID != nil {
		where += ` AND level_of_politics_id = ` + placeholder(args)
		args = append(args, *filter.LevelOfPoliticsID)
	}
	if filter.ProvinceAndTerritoryID != nil {
		where += ` AND province_and_territory_id = ` + placeholder(args)
		args = append(args, *filter.ProvinceAndTerritoryID)
	}
	return where, args
}

// All returns every party matching the filter, newest first
func (r *PartyRepository) All(ctx context.Context, filter models.PartyFilter) (parties []models.PoliticalParty, err error) {
	ctx, done := track(ctx, "list", "political_party")
	defer func() { err = done(err) }()

	where, args := partyWhere(filter)
	rows, err := r.db.Query(ctx, `SELECT `+partyColumns+` FROM political_party`+where+
		` ORDER BY creation_date DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanParty)
}

// List is All with pagination
func (r *PartyRepository) List(ctx context.Context, filter models.PartyFilter, req models.PageRequest) (page models.Page[models.PoliticalParty], err error) {
	ctx, done := track(ctx, "list_paged", "political_party")
	defer func() { err = done(err) }()

	where, args := partyWhere(filter)
	return paged(ctx, r.db,
		`SELECT COUNT(*) FROM political_party`+where, args,
		`SELECT `+partyColumns+` FROM political_party`+where+
			` ORDER BY creation_date DESC, id DESC`+limitOffset(len(args)), args,
		req, scanParty)
}

func (r *PartyRepository) Get(ctx context.Context, id int64) (party models.PoliticalParty, err error) {
	ctx, done := track(ctx, "get", "political_party")
	defer func() { err = done(err) }()

	return scanParty(r.db.QueryRow(ctx, `SELECT `+partyColumns+` FROM political_party WHERE id = $1`, id))
}

func (r *PartyRepository) Create(ctx context.Context, p models.PoliticalParty) (party models.PoliticalParty, err error) {
	ctx, done := track(ctx, "create", "political_party")
	defer func() { err = done(err) }()

	return scanParty(r.db.QueryRow(ctx, `INSERT INTO political_party
			(display_name, hex_color, description, level_of_politics_id, province_and_territory_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+partyColumns,
		p.DisplayName, p.HexColor, p.Description, p.LevelOfPoliticsID, p.ProvinceAndTerritoryID))
}

// Update replaces every mutable column; an unknown id is ErrNotFound
func (r *PartyRepository) Update(ctx context.Context, p models.PoliticalParty) (party models.PoliticalParty, err error) {
	ctx, done := track(ctx, "update", "political_party")
	defer func() { err = done(err) }()

	return scanParty(r.db.QueryRow(ctx, `UPDATE political_party SET
			display_name = $2, hex_color = $3, description = $4,
			level_of_politics_id = $5, province_and_territory_id = $6
		WHERE id = $1
		RETURNING `+partyColumns,
		p.ID, p.DisplayName, p.HexColor, p.Description, p.LevelOfPoliticsID, p.ProvinceAndTerritoryID))
}

// Delete removes the party. Members keep their details with no party.
func (r *PartyRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := track(ctx, "delete", "political_party")
	defer func() { err = done(err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM political_party WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("political party %d: %w", id, models.ErrNotFound)
	}
	return nil
}
