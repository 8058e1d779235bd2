package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lajospolya/popular-vote/internal/models"
)

const citizenColumns = `c.id, c.given_name, c.middle_name, c.surname, c.role, c.auth_id, c.postal_code_id, c.creation_date`

func scanCitizen(row pgx.Row) (models.Citizen, error) {
	var c models.Citizen
	var role string
	err := row.Scan(&c.ID, &c.GivenName, &c.MiddleName, &c.Surname, &role, &c.AuthID, &c.PostalCodeID, &c.CreationDate)
	c.Role = models.Role(role)
	return c, err
}

// CitizenRepository stores citizens, their political details and pending
// politician verifications. Deleted citizens are invisible to every read.
type CitizenRepository struct {
	db DB
}

func NewCitizenRepository(db DB) *CitizenRepository {
	return &CitizenRepository{db: db}
}

func (r *CitizenRepository) List(ctx context.Context) (citizens []models.Citizen, err error) {
	ctx, done := track(ctx, "list", "citizen")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT `+citizenColumns+` FROM citizen c
		WHERE c.deleted_at IS NULL ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCitizen)
}

func (r *CitizenRepository) GetByID(ctx context.Context, id int64) (citizen models.Citizen, err error) {
	ctx, done := track(ctx, "get", "citizen")
	defer func() { err = done(err) }()

	return scanCitizen(r.db.QueryRow(ctx, `SELECT `+citizenColumns+` FROM citizen c
		WHERE c.id = $1 AND c.deleted_at IS NULL`, id))
}

func (r *CitizenRepository) GetByAuthID(ctx context.Context, authID string) (citizen models.Citizen, err error) {
	ctx, done := track(ctx, "get_by_auth_id", "citizen")
	defer func() { err = done(err) }()

	return scanCitizen(r.db.QueryRow(ctx, `SELECT `+citizenColumns+` FROM citizen c
		WHERE c.auth_id = $1 AND c.deleted_at IS NULL`, authID))
}

// Search matches name prefixes case-insensitively; an empty term matches
// everything. Wildcards in the terms match literally.
func (r *CitizenRepository) Search(ctx context.Context, givenName, surname string) (citizens []models.Citizen, err error) {
	ctx, done := track(ctx, "search", "citizen")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT `+citizenColumns+` FROM citizen c
		WHERE c.deleted_at IS NULL
		  AND c.given_name ILIKE $1 ESCAPE '\'
		  AND c.surname ILIKE $2 ESCAPE '\'
		ORDER BY c.surname, c.given_name, c.id`, likePrefix(givenName), likePrefix(surname))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCitizen)
}

const profileQuery = `SELECT ` + citizenColumns + `,
		d.political_party_id,
		l.name,
		ed.name,
		pc.id, pc.name, pc.code, pc.municipality_id, pc.electoral_district_id,
		(SELECT COUNT(*) FROM policy p WHERE p.publisher_citizen_id = c.id),
		(SELECT COUNT(*) FROM vote v WHERE v.citizen_id = c.id),
		EXISTS (SELECT 1 FROM politician_verification pv WHERE pv.citizen_id = c.id)
	FROM citizen c
	LEFT JOIN citizen_political_details d ON d.citizen_id = c.id
	LEFT JOIN level_of_politics l ON l.id = d.level_of_politics_id
	LEFT JOIN electoral_district ed ON ed.id = d.electoral_district_id
	LEFT JOIN postal_code pc ON pc.id = c.postal_code_id
	WHERE c.deleted_at IS NULL AND `

func scanProfile(row pgx.Row) (models.CitizenProfile, error) {
	var p models.CitizenProfile
	var role string
	var pcID, pcMunicipality, pcDistrict *int64
	var pcName, pcCode *string
	err := row.Scan(
		&p.ID, &p.GivenName, &p.MiddleName, &p.Surname, &role, &p.AuthID, &p.PostalCodeID, &p.CreationDate,
		&p.PoliticalPartyID, &p.LevelOfPoliticsName, &p.ElectoralDistrictName,
		&pcID, &pcName, &pcCode, &pcMunicipality, &pcDistrict,
		&p.PolicyCount, &p.VoteCount, &p.VerificationPending,
	)
	if err != nil {
		return p, err
	}
	p.Role = models.Role(role)
	if pcID != nil {
		p.PostalCode = &models.PostalCode{
			ID:                  *pcID,
			Name:                *pcName,
			Code:                *pcCode,
			MunicipalityID:      *pcMunicipality,
			ElectoralDistrictID: *pcDistrict,
		}
	}
	return p, nil
}

// Profile returns the joined profile view used by GET /citizens/{id}
func (r *CitizenRepository) Profile(ctx context.Context, id int64) (profile models.CitizenProfile, err error) {
	ctx, done := track(ctx, "profile", "citizen")
	defer func() { err = done(err) }()

	return scanProfile(r.db.QueryRow(ctx, profileQuery+`c.id = $1`, id))
}

// ProfileByAuthID is Profile keyed by the token subject
func (r *CitizenRepository) ProfileByAuthID(ctx context.Context, authID string) (profile models.CitizenProfile, err error) {
	ctx, done := track(ctx, "profile_by_auth_id", "citizen")
	defer func() { err = done(err) }()

	return scanProfile(r.db.QueryRow(ctx, profileQuery+`c.auth_id = $1`, authID))
}

// Create inserts a citizen. A live citizen with the same auth id yields
// ErrAlreadyExists.
func (r *CitizenRepository) Create(ctx context.Context, c models.Citizen) (citizen models.Citizen, err error) {
	ctx, done := track(ctx, "create", "citizen")
	defer func() { err = done(err) }()

	if c.Role == "" {
		c.Role = models.RoleCitizen
	}
	return scanCitizen(r.db.QueryRow(ctx, `INSERT INTO citizen AS c (given_name, middle_name, surname, role, auth_id, postal_code_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+citizenColumns,
		c.GivenName, c.MiddleName, c.Surname, string(c.Role), c.AuthID, c.PostalCodeID))
}

// UpdatePostalCode sets the citizen's postal code. An unknown postal code
// surfaces as ErrNotFound through the foreign key.
func (r *CitizenRepository) UpdatePostalCode(ctx context.Context, id, postalCodeID int64) (citizen models.Citizen, err error) {
	ctx, done := track(ctx, "update_postal_code", "citizen")
	defer func() { err = done(err) }()

	return scanCitizen(r.db.QueryRow(ctx, `UPDATE citizen c SET postal_code_id = $2
		WHERE c.id = $1 AND c.deleted_at IS NULL
		RETURNING `+citizenColumns, id, postalCodeID))
}

// SoftDelete marks the citizen deleted. Deleting an unknown or already
// deleted citizen is ErrNotFound.
func (r *CitizenRepository) SoftDelete(ctx context.Context, id int64) (err error) {
	ctx, done := track(ctx, "delete", "citizen")
	defer func() { err = done(err) }()

	tag, err := r.db.Exec(ctx, `UPDATE citizen SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("citizen %d: %w", id, models.ErrNotFound)
	}
	return nil
}

const politicalDetailsColumns = `d.id, d.citizen_id, d.level_of_politics_id, d.electoral_district_id, d.political_party_id`

func scanPoliticalDetails(row pgx.Row) (models.CitizenPoliticalDetails, error) {
	var d models.CitizenPoliticalDetails
	err := row.Scan(&d.ID, &d.CitizenID, &d.LevelOfPoliticsID, &d.ElectoralDistrictID, &d.PoliticalPartyID)
	return d, err
}

// DeclarePolitician upserts the political details and opens a pending
// verification in one transaction.
func (r *CitizenRepository) DeclarePolitician(ctx context.Context, details models.CitizenPoliticalDetails) (saved models.CitizenPoliticalDetails, err error) {
	ctx, done := track(ctx, "declare_politician", "citizen_political_details")
	defer func() { err = done(err) }()

	err = WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		var txErr error
		saved, txErr = scanPoliticalDetails(tx.QueryRow(ctx, `INSERT INTO citizen_political_details AS d
				(citizen_id, level_of_politics_id, electoral_district_id, political_party_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (citizen_id) DO UPDATE SET
				level_of_politics_id = EXCLUDED.level_of_politics_id,
				electoral_district_id = EXCLUDED.electoral_district_id,
				political_party_id = EXCLUDED.political_party_id
			RETURNING `+politicalDetailsColumns,
			details.CitizenID, details.LevelOfPoliticsID, details.ElectoralDistrictID, details.PoliticalPartyID))
		if txErr != nil {
			return txErr
		}

		_, txErr = tx.Exec(ctx, `INSERT INTO politician_verification (citizen_id) VALUES ($1)
			ON CONFLICT (citizen_id) DO NOTHING`, details.CitizenID)
		return txErr
	})
	return saved, err
}

// PoliticalDetails returns ErrNotFound for citizens who never declared
func (r *CitizenRepository) PoliticalDetails(ctx context.Context, citizenID int64) (details models.CitizenPoliticalDetails, err error) {
	ctx, done := track(ctx, "get", "citizen_political_details")
	defer func() { err = done(err) }()

	return scanPoliticalDetails(r.db.QueryRow(ctx, `SELECT `+politicalDetailsColumns+`
		FROM citizen_political_details d WHERE d.citizen_id = $1`, citizenID))
}

// PendingVerifications lists citizens awaiting politician verification
func (r *CitizenRepository) PendingVerifications(ctx context.Context) (citizens []models.Citizen, err error) {
	ctx, done := track(ctx, "list_pending", "politician_verification")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT `+citizenColumns+` FROM citizen c
		JOIN politician_verification pv ON pv.citizen_id = c.id
		WHERE c.deleted_at IS NULL
		ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCitizen)
}

// PromoteToPolitician flips a CITIZEN with a pending verification to
// POLITICIAN and clears the verification, atomically. Any other state is
// ErrInvalidState.
func (r *CitizenRepository) PromoteToPolitician(ctx context.Context, id int64) (citizen models.Citizen, err error) {
	ctx, done := track(ctx, "verify_politician", "citizen")
	defer func() { err = done(err) }()

	err = WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		var txErr error
		citizen, txErr = scanCitizen(tx.QueryRow(ctx, `UPDATE citizen c SET role = 'POLITICIAN'
			WHERE c.id = $1 AND c.deleted_at IS NULL AND c.role = 'CITIZEN'
			  AND EXISTS (SELECT 1 FROM politician_verification pv WHERE pv.citizen_id = c.id)
			RETURNING `+citizenColumns, id))
		if errors.Is(txErr, pgx.ErrNoRows) {
			return fmt.Errorf("citizen %d has no pending verification: %w", id, models.ErrInvalidState)
		}
		if txErr != nil {
			return txErr
		}

		_, txErr = tx.Exec(ctx, `DELETE FROM politician_verification WHERE citizen_id = $1`, id)
		return txErr
	})
	return citizen, err
}

// Politicians pages through verified politicians, optionally at one level
func (r *CitizenRepository) Politicians(ctx context.Context, levelOfPoliticsID *int64, req models.PageRequest) (page models.Page[models.Citizen], err error) {
	ctx, done := track(ctx, "list_politicians", "citizen")
	defer func() { err = done(err) }()

	where := `FROM citizen c
		LEFT JOIN citizen_political_details d ON d.citizen_id = c.id
		WHERE c.deleted_at IS NULL AND c.role = 'POLITICIAN'`
	var args []any
	if levelOfPoliticsID != nil {
		where += ` AND d.level_of_politics_id = ` + placeholder(args)
		args = append(args, *levelOfPoliticsID)
	}

	return paged(ctx, r.db,
		`SELECT COUNT(*) `+where, args,
		`SELECT `+citizenColumns+` `+where+
			` ORDER BY c.creation_date DESC, c.id DESC`+limitOffset(len(args)), args,
		req, scanCitizen)
}

// PartyMembers lists politicians whose political details name the party
func (r *CitizenRepository) PartyMembers(ctx context.Context, partyID int64) (citizens []models.Citizen, err error) {
	ctx, done := track(ctx, "list_party_members", "citizen")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT `+citizenColumns+` FROM citizen c
		JOIN citizen_political_details d ON d.citizen_id = c.id
		WHERE c.deleted_at IS NULL AND c.role = 'POLITICIAN' AND d.political_party_id = $1
		ORDER BY c.surname, c.given_name, c.id`, partyID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCitizen)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix turns a user term into a literal ILIKE prefix pattern
func likePrefix(term string) string {
	return likeEscaper.Replace(term) + "%"
}
