package jobrole

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/occfit/occfit/internal/platform/db"
	"github.com/occfit/occfit/internal/platform/errs"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, name, extreme_altitude, limits, version_id, created_at, updated_at`

func scan(row pgx.Row) (*JobRole, error) {
	var j JobRole
	var limits []byte
	err := row.Scan(&j.ID, &j.Name, &j.ExtremeAltitude, &limits,
		&j.VersionID, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFoundf("job role not found")
	}
	if err != nil {
		return nil, err
	}
	if len(limits) > 0 {
		if err := json.Unmarshal(limits, &j.Limits); err != nil {
			return nil, fmt.Errorf("decode limits: %w", err)
		}
	}
	return &j, nil
}

func (r *repoPG) Create(ctx context.Context, j *JobRole) error {
	j.ID = uuid.New()
	j.VersionID = 1
	limits, err := json.Marshal(j.Limits)
	if err != nil {
		return fmt.Errorf("encode limits: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO job_role (id, name, extreme_altitude, limits, version_id)
		VALUES ($1,$2,$3,$4,$5)`,
		j.ID, j.Name, j.ExtremeAltitude, limits, j.VersionID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*JobRole, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM job_role WHERE id = $1`, id))
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*JobRole, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM job_role WHERE name = $1`, name))
}

func (r *repoPG) Update(ctx context.Context, j *JobRole) error {
	limits, err := json.Marshal(j.Limits)
	if err != nil {
		return fmt.Errorf("encode limits: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE job_role
		SET name=$2, extreme_altitude=$3, limits=$4,
			version_id = version_id + 1, updated_at = NOW()
		WHERE id = $1 AND version_id = $5`,
		j.ID, j.Name, j.ExtremeAltitude, limits, j.VersionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.Conflictf("job role %s: version %d is stale", j.ID, j.VersionID)
	}
	j.VersionID++
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM job_role WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*JobRole, int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM job_role ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*JobRole
	for rows.Next() {
		j, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM job_role`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
