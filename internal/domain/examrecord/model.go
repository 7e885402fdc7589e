// Package examrecord tracks one required procedure within a visit through its
// completion lifecycle and computes the derived clinical values for its raw
// inputs. The workflow service owns every state transition; raw inputs are a
// typed variant per form kind, never an untyped field bag.
package examrecord

import (
	"time"

	"github.com/google/uuid"

	"github.com/occfit/occfit/internal/domain/station"
)

// State is the completion state of an exam record.
type State string

const (
	StateNew        State = "new"
	StateInProgress State = "in_progress"
	StateFinalized  State = "finalized"
)

// Procedure describes the exam a record implements: what it is called, which
// form kind captures its raw inputs, and which station answers for it.
type Procedure struct {
	Name            string       `json:"name"`
	Category        string       `json:"category"`
	FormKind        FormKind     `json:"form_kind"`
	ResponsibleRole station.Role `json:"responsible_role"`
}

// Note is an append-only annotation on an exam record.
type Note struct {
	AuthorID string       `json:"author_id"`
	Role     station.Role `json:"role"`
	Text     string       `json:"text"`
	At       time.Time    `json:"at"`
}

// ExamRecord is one required procedure within a visit. Raw and Derived are
// immutable once the record is finalized; elevated roles may still append
// notes or explicitly reopen the record.
type ExamRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	VisitID     uuid.UUID `db:"visit_id" json:"visit_id"`
	Procedure   Procedure `json:"procedure"`
	State       State     `db:"state" json:"state"`
	Raw         RawInput  `json:"raw,omitempty"`
	Derived     *Derived  `json:"derived,omitempty"`
	DocumentRef *string   `db:"document_ref" json:"document_ref,omitempty"`
	Notes       []Note    `json:"notes,omitempty"`
	VersionID   int       `db:"version_id" json:"version_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// GetVersionID returns the current version.
func (e *ExamRecord) GetVersionID() int { return e.VersionID }

// SetVersionID sets the current version.
func (e *ExamRecord) SetVersionID(v int) { e.VersionID = v }

// HasContent reports whether the record carries anything worth finalizing: a
// populated raw field, an attached document, or a computed derived output.
func (e *ExamRecord) HasContent() bool {
	if e.DocumentRef != nil && *e.DocumentRef != "" {
		return true
	}
	if e.Raw != nil && !e.Raw.Empty() {
		return true
	}
	if e.Derived != nil && !e.Derived.Empty() {
		return true
	}
	return false
}

// Completion is the visit-level aggregate projection: how many of the visit's
// records are finalized out of the total. It is pure and never persisted.
func Completion(records []*ExamRecord) (finalized, total int) {
	for _, r := range records {
		total++
		if r.State == StateFinalized {
			finalized++
		}
	}
	return finalized, total
}

// IsComplete reports whether every required record is finalized. An empty
// record set is never complete.
func IsComplete(records []*ExamRecord) bool {
	finalized, total := Completion(records)
	return total > 0 && finalized == total
}
