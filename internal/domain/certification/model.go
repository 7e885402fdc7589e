// Package certification seals accepted verdicts into tamper-evident,
// append-only records. A certification is never updated or deleted; a
// correction seals a new one that supersedes the old.
package certification

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/occfit/occfit/internal/domain/visit"
)

// Certification is one sealed verdict. Payload is the canonical serialized
// form the digest was computed over; any verifier can recompute the digest
// from it and compare.
type Certification struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	VisitID    uuid.UUID       `db:"visit_id" json:"visit_id"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	Digest     string          `db:"digest" json:"digest"`
	Algorithm  string          `db:"algorithm" json:"algorithm"`
	SignedBy   string          `db:"signed_by" json:"signed_by"`
	SealedAt   time.Time       `db:"sealed_at" json:"sealed_at"`
	Supersedes *uuid.UUID      `db:"supersedes" json:"supersedes,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// sealPayload is the content the digest covers. Its canonical byte form is
// produced by canonicalPayload; marshaling it twice always yields identical
// bytes.
type sealPayload struct {
	VisitID    uuid.UUID             `json:"visit_id"`
	Verdict    visit.AcceptedVerdict `json:"verdict"`
	SignedBy   string                `json:"signed_by"`
	SealedAt   time.Time             `json:"sealed_at"`
	Supersedes *uuid.UUID            `json:"supersedes,omitempty"`
}

func canonicalPayload(p sealPayload) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return canonicalJSON(b)
}

// canonicalJSON reduces every JSON-equivalent encoding of a document to a
// single byte form: compact, object keys sorted, number text preserved. Any
// verifier can recanonicalize a stored payload and recompute its digest even
// if the payload passed through a store or transport that re-ordered keys or
// normalized whitespace.
func canonicalJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
