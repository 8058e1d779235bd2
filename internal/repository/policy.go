package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lajospolya/popular-vote/internal/models"
)

const policyColumns = `p.id, p.description, p.publisher_citizen_id, p.level_of_politics_id,
	p.citizen_political_details_id, p.close_date, p.creation_date`

func scanPolicy(row pgx.Row) (models.Policy, error) {
	var p models.Policy
	err := row.Scan(&p.ID, &p.Description, &p.PublisherCitizenID, &p.LevelOfPoliticsID,
		&p.CitizenPoliticalDetailsID, &p.CloseDate, &p.CreationDate)
	return p, err
}

func scanPolicySummary(row pgx.Row) (models.PolicySummary, error) {
	var s models.PolicySummary
	err := row.Scan(&s.ID, &s.Description, &s.PublisherCitizenID, &s.LevelOfPoliticsID,
		&s.CitizenPoliticalDetailsID, &s.CloseDate, &s.CreationDate,
		&s.PublisherName, &s.IsBookmarked)
	return s, err
}

// PolicyRepository stores policies with their co-authors and bookmarks
type PolicyRepository struct {
	db DB
}

func NewPolicyRepository(db DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// List pages through policies as seen by viewerID, who may have bookmarked
// some of them. A zero viewer sees no bookmarks.
func (r *PolicyRepository) List(ctx context.Context, viewerID int64, levelOfPoliticsID *int64, req models.PageRequest) (page models.Page[models.PolicySummary], err error) {
	ctx, done := track(ctx, "list", "policy")
	defer func() { err = done(err) }()

	where := ` FROM policy p JOIN citizen pub ON pub.id = p.publisher_citizen_id WHERE TRUE`
	var filterArgs []any
	if levelOfPoliticsID != nil {
		where += ` AND p.level_of_politics_id = ` + placeholder(filterArgs)
		filterArgs = append(filterArgs, *levelOfPoliticsID)
	}

	pageArgs := append(append([]any{}, filterArgs...), viewerID)
	return paged(ctx, r.db,
		`SELECT COUNT(*)`+where, filterArgs,
		`SELECT `+policyColumns+`, pub.given_name || ' ' || pub.surname,
			EXISTS (SELECT 1 FROM policy_bookmark b WHERE b.policy_id = p.id AND b.citizen_id = `+placeholder(filterArgs)+`)`+
			where+` ORDER BY p.creation_date DESC, p.id DESC`+limitOffset(len(pageArgs)), pageArgs,
		req, scanPolicySummary)
}

// Bookmarks pages through the policies citizenID bookmarked
func (r *PolicyRepository) Bookmarks(ctx context.Context, citizenID int64, req models.PageRequest) (page models.Page[models.PolicySummary], err error) {
	ctx, done := track(ctx, "list_bookmarked", "policy")
	defer func() { err = done(err) }()

	from := ` FROM policy p
		JOIN policy_bookmark b ON b.policy_id = p.id AND b.citizen_id = $1
		JOIN citizen pub ON pub.id = p.publisher_citizen_id`
	args := []any{citizenID}
	return paged(ctx, r.db,
		`SELECT COUNT(*)`+from, args,
		`SELECT `+policyColumns+`, pub.given_name || ' ' || pub.surname, TRUE`+
			from+` ORDER BY p.creation_date DESC, p.id DESC`+limitOffset(len(args)), args,
		req, scanPolicySummary)
}

// ByPublisher pages through the policies a citizen published
func (r *PolicyRepository) ByPublisher(ctx context.Context, citizenID int64, req models.PageRequest) (page models.Page[models.Policy], err error) {
	ctx, done := track(ctx, "list_by_publisher", "policy")
	defer func() { err = done(err) }()

	args := []any{citizenID}
	return paged(ctx, r.db,
		`SELECT COUNT(*) FROM policy p WHERE p.publisher_citizen_id = $1`, args,
		`SELECT `+policyColumns+` FROM policy p WHERE p.publisher_citizen_id = $1
			ORDER BY p.creation_date DESC, p.id DESC`+limitOffset(len(args)), args,
		req, scanPolicy)
}

// ByParty lists policies whose publisher's political details name the party
func (r *PolicyRepository) ByParty(ctx context.Context, partyID int64) (policies []models.Policy, err error) {
	ctx, done := track(ctx, "list_by_party", "policy")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT `+policyColumns+` FROM policy p
		JOIN citizen_political_details d ON d.id = p.citizen_political_details_id
		WHERE d.political_party_id = $1
		ORDER BY p.creation_date DESC, p.id DESC`, partyID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPolicy)
}

func (r *PolicyRepository) Get(ctx context.Context, id int64) (policy models.Policy, err error) {
	ctx, done := track(ctx, "get", "policy")
	defer func() { err = done(err) }()

	return scanPolicy(r.db.QueryRow(ctx, `SELECT `+policyColumns+` FROM policy p WHERE p.id = $1`, id))
}

// CoAuthors lists the live co-authors of a policy
func (r *PolicyRepository) CoAuthors(ctx context.Context, policyID int64) (citizens []models.Citizen, err error) {
	ctx, done := track(ctx, "list", "policy_co_author_citizen")
	defer func() { err = done(err) }()

	return r.coAuthors(ctx, r.db, policyID)
}

func (r *PolicyRepository) coAuthors(ctx context.Context, db DBTX, policyID int64) ([]models.Citizen, error) {
	rows, err := db.Query(ctx, `SELECT `+citizenColumns+` FROM citizen c
		JOIN policy_co_author_citizen pc ON pc.citizen_id = c.id
		WHERE pc.policy_id = $1 AND c.deleted_at IS NULL
		ORDER BY c.id`, policyID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCitizen)
}

// Details assembles the policy with its publisher, co-authors and opinions
func (r *PolicyRepository) Details(ctx context.Context, id int64) (details models.PolicyDetails, err error) {
	ctx, done := track(ctx, "details", "policy")
	defer func() { err = done(err) }()

	row := r.db.QueryRow(ctx, `SELECT `+policyColumns+`, pub.given_name || ' ' || pub.surname
		FROM policy p JOIN citizen pub ON pub.id = p.publisher_citizen_id
		WHERE p.id = $1`, id)
	if err := row.Scan(&details.ID, &details.Description, &details.PublisherCitizenID, &details.LevelOfPoliticsID,
		&details.CitizenPoliticalDetailsID, &details.CloseDate, &details.CreationDate, &details.PublisherName); err != nil {
		return details, err
	}

	if details.CoAuthors, err = r.coAuthors(ctx, r.db, id); err != nil {
		return details, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+opinionDetailColumns+` FROM opinion o
		JOIN citizen a ON a.id = o.author_id
		WHERE o.policy_id = $1
		ORDER BY o.creation_date, o.id`, id)
	if err != nil {
		return details, err
	}
	details.Opinions, err = collect(rows, scanOpinionDetail)
	return details, err
}

// Create inserts the policy and its co-author rows in one transaction. An
// unknown co-author surfaces as ErrNotFound.
func (r *PolicyRepository) Create(ctx context.Context, np models.NewPolicy) (policy models.Policy, coAuthors []models.Citizen, err error) {
	ctx, done := track(ctx, "create", "policy")
	defer func() { err = done(err) }()

	err = WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		var txErr error
		policy, txErr = scanPolicy(tx.QueryRow(ctx, `INSERT INTO policy AS p
				(description, publisher_citizen_id, level_of_politics_id, citizen_political_details_id, close_date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+policyColumns,
			np.Description, np.PublisherCitizenID, np.LevelOfPoliticsID, np.CitizenPoliticalDetailsID, np.CloseDate))
		if txErr != nil {
			return txErr
		}

		if len(np.CoAuthorCitizenIDs) > 0 {
			if _, txErr = tx.Exec(ctx, `INSERT INTO policy_co_author_citizen (policy_id, citizen_id)
				SELECT $1, unnest($2::bigint[])
				ON CONFLICT DO NOTHING`, policy.ID, np.CoAuthorCitizenIDs); txErr != nil {
				return txErr
			}
		}

		coAuthors, txErr = r.coAuthors(ctx, tx, policy.ID)
		return txErr
	})
	return policy, coAuthors, err
}

// Delete removes a policy; its opinions, votes and associations cascade
func (r *PolicyRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := track(ctx, "delete", "policy")
	defer func() { err = done(err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM policy WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("policy %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Bookmark is idempotent. An unknown policy or citizen is ErrNotFound.
func (r *PolicyRepository) Bookmark(ctx context.Context, citizenID, policyID int64) (err error) {
	ctx, done := track(ctx, "create", "policy_bookmark")
	defer func() { err = done(err) }()

	_, err = r.db.Exec(ctx, `INSERT INTO policy_bookmark (policy_id, citizen_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, policyID, citizenID)
	return err
}

// Unbookmark deletes the bookmark if it exists
func (r *PolicyRepository) Unbookmark(ctx context.Context, citizenID, policyID int64) (err error) {
	ctx, done := track(ctx, "delete", "policy_bookmark")
	defer func() { err = done(err) }()

	_, err = r.db.Exec(ctx, `DELETE FROM policy_bookmark WHERE policy_id = $1 AND citizen_id = $2`, policyID, citizenID)
	return err
}

func (r *PolicyRepository) IsBookmarked(ctx context.Context, citizenID, policyID int64) (bookmarked bool, err error) {
	ctx, done := track(ctx, "exists", "policy_bookmark")
	defer func() { err = done(err) }()

	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM policy_bookmark
		WHERE policy_id = $1 AND citizen_id = $2)`, policyID, citizenID).Scan(&bookmarked)
	return bookmarked, err
}
