package visit

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

const cols = `id, patient_id, employer_id, job_role_id, work_order, aptitude,
	verdict, visited_at, version_id, created_at, updated_at`

func scan(row pgx.Row) (*Visit, error) {
	var v Visit
	var verdict []byte
	err := row.Scan(&v.ID, &v.PatientID, &v.EmployerID, &v.JobRoleID,
		&v.WorkOrder, &v.Aptitude, &verdict, &v.VisitedAt,
		&v.VersionID, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFoundf("visit not found")
	}
	if err != nil {
		return nil, err
	}
	if len(verdict) > 0 {
		var av AcceptedVerdict
		if err := json.Unmarshal(verdict, &av); err != nil {
			return nil, fmt.Errorf("decode verdict: %w", err)
		}
		v.Verdict = &av
	}
	return &v, nil
}

func (r *repoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	v.VersionID = 1
	if v.Aptitude == "" {
		v.Aptitude = AptitudePending
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visit (id, patient_id, employer_id, job_role_id, work_order,
			aptitude, visited_at, version_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		v.ID, v.PatientID, v.EmployerID, v.JobRoleID, v.WorkOrder,
		v.Aptitude, v.VisitedAt, v.VersionID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM visit WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, v *Visit) error {
	var verdict []byte
	var err error
	if v.Verdict != nil {
		if verdict, err = json.Marshal(v.Verdict); err != nil {
			return fmt.Errorf("encode verdict: %w", err)
		}
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE visit
		SET work_order=$2, aptitude=$3, verdict=$4,
			version_id = version_id + 1, updated_at = NOW()
		WHERE id = $1 AND version_id = $5`,
		v.ID, v.WorkOrder, v.Aptitude, verdict, v.VersionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.Conflictf("visit %s: version %d is stale", v.ID, v.VersionID)
	}
	v.VersionID++
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM visit WHERE id = $1`, id)
	return err
}

func (r *repoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Visit, int, error) {
	query := `SELECT ` + cols + ` FROM visit ` + where +
		fmt.Sprintf(` ORDER BY visited_at DESC LIMIT %d OFFSET %d`, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Visit
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visit `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Visit, int, error) {
	return r.list(ctx, "", nil, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	return r.list(ctx, `WHERE patient_id = $1`, []interface{}{patientID}, limit, offset)
}
