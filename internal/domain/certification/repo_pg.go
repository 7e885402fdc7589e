package certification

import (
	"context"
	"errors"

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

const cols = `id, visit_id, payload, digest, algorithm, signed_by, sealed_at, supersedes, created_at`

func scan(row pgx.Row) (*Certification, error) {
	var c Certification
	var payload []byte
	err := row.Scan(&c.ID, &c.VisitID, &payload, &c.Digest, &c.Algorithm,
		&c.SignedBy, &c.SealedAt, &c.Supersedes, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFoundf("certification not found")
	}
	if err != nil {
		return nil, err
	}
	c.Payload = payload
	return &c, nil
}

func (r *repoPG) Append(ctx context.Context, c *Certification) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO certification (id, visit_id, payload, digest, algorithm, signed_by, sealed_at, supersedes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.VisitID, []byte(c.Payload), c.Digest, c.Algorithm, c.SignedBy, c.SealedAt, c.Supersedes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Certification, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM certification WHERE id = $1`, id)
	return scan(row)
}

func (r *repoPG) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Certification, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM certification WHERE visit_id = $1 ORDER BY created_at DESC, id DESC`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Certification
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
