package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(Validationf("bad weight")); got != KindValidation {
		t.Errorf("expected validation, got %v", got)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("expected unknown, got %v", got)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := Conflictf("version mismatch")
	outer := fmt.Errorf("update exam record: %w", inner)
	if !IsConflict(outer) {
		t.Error("wrapped conflict not detected")
	}
	if IsPermission(outer) {
		t.Error("wrong kind matched")
	}
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		err  error
		pred func(error) bool
	}{
		{Validationf("x"), IsValidation},
		{Permissionf("x"), IsPermission},
		{Immutabilityf("x"), IsImmutability},
		{IncompleteDataf("x"), IsIncompleteData},
		{Conflictf("x"), IsConflict},
		{NotFoundf("x"), IsNotFound},
	}
	for _, c := range cases {
		if !c.pred(c.err) {
			t.Errorf("predicate failed for %v", c.err)
		}
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("row not found")
	err := Wrap(KindNotFound, "visit lookup", cause)
	if !errors.Is(err, cause) {
		t.Error("cause not reachable via errors.Is")
	}
	if !IsNotFound(err) {
		t.Error("kind lost after wrap")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]error{
		http.StatusBadRequest:          Validationf("x"),
		http.StatusForbidden:           Permissionf("x"),
		http.StatusConflict:            Conflictf("x"),
		http.StatusPreconditionFailed:  IncompleteDataf("x"),
		http.StatusNotFound:            NotFoundf("x"),
		http.StatusInternalServerError: errors.New("boom"),
	}
	for want, err := range cases {
		if got := HTTPStatus(err); got != want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", err, got, want)
		}
	}
}

func TestImmutabilityStatus(t *testing.T) {
	if HTTPStatus(Immutabilityf("finalized")) != http.StatusConflict {
		t.Error("immutability should map to 409")
	}
}
