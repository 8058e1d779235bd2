package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lajospolya/popular-vote/internal/models"
)

const opinionColumns = `o.id, o.description, o.author_id, o.policy_id, o.creation_date`

const opinionDetailColumns = opinionColumns + `, a.given_name || ' ' || a.surname`

func scanOpinion(row pgx.Row) (models.Opinion, error) {
	var o models.Opinion
	err := row.Scan(&o.ID, &o.Description, &o.AuthorID, &o.PolicyID, &o.CreationDate)
	return o, err
}

func scanOpinionDetail(row pgx.Row) (models.OpinionDetail, error) {
	var o models.OpinionDetail
	err := row.Scan(&o.ID, &o.Description, &o.AuthorID, &o.PolicyID, &o.CreationDate, &o.AuthorName)
	return o, err
}

// OpinionRepository stores opinions and their likes
type OpinionRepository struct {
	db DBTX
}

func NewOpinionRepository(db DBTX) *OpinionRepository {
	return &OpinionRepository{db: db}
}

func (r *OpinionRepository) List(ctx context.Context) (opinions []models.Opinion, err error) {
	ctx, done := track(ctx, "list", "opinion")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT `+opinionColumns+` FROM opinion o ORDER BY o.creation_date DESC, o.id DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOpinion)
}

// ByPolicy lists a policy's opinions with author names, oldest first
func (r *OpinionRepository) ByPolicy(ctx context.Context, policyID int64) (opinions []models.OpinionDetail, err error) {
	ctx, done := track(ctx, "list_by_policy", "opinion")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT `+opinionDetailColumns+` FROM opinion o
		JOIN citizen a ON a.id = o.author_id
		WHERE o.policy_id = $1
		ORDER BY o.creation_date, o.id`, policyID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOpinionDetail)
}

func (r *OpinionRepository) Get(ctx context.Context, id int64) (opinion models.Opinion, err error) {
	ctx, done := track(ctx, "get", "opinion")
	defer func() { err = done(err) }()

	return scanOpinion(r.db.QueryRow(ctx, `SELECT `+opinionColumns+` FROM opinion o WHERE o.id = $1`, id))
}

func (r *OpinionRepository) Create(ctx context.Context, o models.Opinion) (opinion models.Opinion, err error) {
	ctx, done := track(ctx, "create", "opinion")
	defer func() { err = done(err) }()

	return scanOpinion(r.db.QueryRow(ctx, `INSERT INTO opinion AS o (description, author_id, policy_id)
		VALUES ($1, $2, $3)
		RETURNING `+opinionColumns, o.Description, o.AuthorID, o.PolicyID))
}

func (r *OpinionRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := track(ctx, "delete", "opinion")
	defer func() { err = done(err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM opinion WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("opinion %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Like is idempotent. An unknown opinion is ErrNotFound through the
// foreign key.
func (r *OpinionRepository) Like(ctx context.Context, citizenID, opinionID int64) (err error) {
	ctx, done := track(ctx, "create", "citizen_opinion_like")
	defer func() { err = done(err) }()

	_, err = r.db.Exec(ctx, `INSERT INTO citizen_opinion_like (citizen_id, opinion_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, citizenID, opinionID)
	return err
}

// Unlike deletes the like if it exists
func (r *OpinionRepository) Unlike(ctx context.Context, citizenID, opinionID int64) (err error) {
	ctx, done := track(ctx, "delete", "citizen_opinion_like")
	defer func() { err = done(err) }()

	_, err = r.db.Exec(ctx, `DELETE FROM citizen_opinion_like WHERE citizen_id = $1 AND opinion_id = $2`, citizenID, opinionID)
	return err
}

func (r *OpinionRepository) LikedOpinionIDs(ctx context.Context, citizenID int64) (ids []int64, err error) {
	ctx, done := track(ctx, "list", "citizen_opinion_like")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT opinion_id FROM citizen_opinion_like
		WHERE citizen_id = $1 ORDER BY opinion_id`, citizenID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// LikeCounts counts likes for the given opinions in one grouped query.
// Opinions without likes are absent from the map.
func (r *OpinionRepository) LikeCounts(ctx context.Context, opinionIDs []int64) (counts map[int64]int64, err error) {
	ctx, done := track(ctx, "count", "citizen_opinion_like")
	defer func() { err = done(err) }()

	counts = make(map[int64]int64)
	if len(opinionIDs) == 0 {
		return counts, nil
	}

	rows, err := r.db.Query(ctx, `SELECT opinion_id, COUNT(*) FROM citizen_opinion_like
		WHERE opinion_id = ANY($1)
		GROUP BY opinion_id`, opinionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}
