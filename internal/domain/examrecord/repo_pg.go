package examrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/occfit/occfit/internal/domain/station"
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

const cols = `id, visit_id, procedure_name, procedure_category, form_kind,
	responsible_role, state, raw, derived, document_ref, notes, version_id,
	created_at, updated_at`

func scan(row pgx.Row) (*ExamRecord, error) {
	var e ExamRecord
	var formKind, respRole string
	var raw, derived, notes []byte
	err := row.Scan(&e.ID, &e.VisitID, &e.Procedure.Name, &e.Procedure.Category,
		&formKind, &respRole, &e.State, &raw, &derived, &e.DocumentRef, &notes,
		&e.VersionID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFoundf("exam record not found")
	}
	if err != nil {
		return nil, err
	}
	e.Procedure.FormKind = FormKind(formKind)
	e.Procedure.ResponsibleRole = station.Role(respRole)

	if len(raw) > 0 {
		e.Raw, err = DecodeInput(e.Procedure.FormKind, raw)
		if err != nil {
			return nil, fmt.Errorf("decode raw input: %w", err)
		}
		if e.Raw.Empty() {
			e.Raw = nil
		}
	}
	if len(derived) > 0 {
		var d Derived
		if err := json.Unmarshal(derived, &d); err != nil {
			return nil, fmt.Errorf("decode derived output: %w", err)
		}
		if !d.Empty() {
			e.Derived = &d
		}
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &e.Notes); err != nil {
			return nil, fmt.Errorf("decode notes: %w", err)
		}
	}
	return &e, nil
}

func encode(e *ExamRecord) (raw, derived, notes []byte, err error) {
	if e.Raw != nil {
		if raw, err = json.Marshal(e.Raw); err != nil {
			return nil, nil, nil, fmt.Errorf("encode raw input: %w", err)
		}
	}
	if e.Derived != nil {
		if derived, err = json.Marshal(e.Derived); err != nil {
			return nil, nil, nil, fmt.Errorf("encode derived output: %w", err)
		}
	}
	if len(e.Notes) > 0 {
		if notes, err = json.Marshal(e.Notes); err != nil {
			return nil, nil, nil, fmt.Errorf("encode notes: %w", err)
		}
	}
	return raw, derived, notes, nil
}

func (r *repoPG) Create(ctx context.Context, e *ExamRecord) error {
	e.ID = uuid.New()
	e.VersionID = 1
	if e.State == "" {
		e.State = StateNew
	}
	raw, derived, notes, err := encode(e)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO exam_record (id, visit_id, procedure_name, procedure_category,
			form_kind, responsible_role, state, raw, derived, document_ref, notes, version_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		e.ID, e.VisitID, e.Procedure.Name, e.Procedure.Category,
		string(e.Procedure.FormKind), string(e.Procedure.ResponsibleRole),
		e.State, raw, derived, e.DocumentRef, notes, e.VersionID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ExamRecord, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM exam_record WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, e *ExamRecord) error {
	raw, derived, notes, err := encode(e)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE exam_record
		SET state=$2, raw=$3, derived=$4, document_ref=$5, notes=$6,
			version_id = version_id + 1, updated_at = NOW()
		WHERE id = $1 AND version_id = $7`,
		e.ID, e.State, raw, derived, e.DocumentRef, notes, e.VersionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.Conflictf("exam record %s: version %d is stale", e.ID, e.VersionID)
	}
	e.VersionID++
	return nil
}

func (r *repoPG) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*ExamRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM exam_record WHERE visit_id = $1 ORDER BY procedure_name`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ExamRecord
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repoPG) DeleteByVisit(ctx context.Context, visitID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM exam_record WHERE visit_id = $1`, visitID)
	return err
}
