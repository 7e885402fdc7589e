package jobrole

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/occfit/occfit/internal/platform/errs"
)

type mockRepo struct{ store map[uuid.UUID]*JobRole }

func newMockRepo() *mockRepo { return &mockRepo{store: make(map[uuid.UUID]*JobRole)} }
func (m *mockRepo) Create(_ context.Context, j *JobRole) error {
	j.ID = uuid.New(); j.VersionID = 1; m.store[j.ID] = j; return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*JobRole, error) {
	j, ok := m.store[id]; if !ok { return nil, errs.NotFoundf("job role not found") }; cp := *j; return &cp, nil
}
func (m *mockRepo) GetByName(_ context.Context, name string) (*JobRole, error) {
	for _, j := range m.store { if j.Name == name { cp := *j; return &cp, nil } }
	return nil, errs.NotFoundf("job role not found")
}
func (m *mockRepo) Update(_ context.Context, j *JobRole) error {
	cur, ok := m.store[j.ID]
	if !ok { return errs.NotFoundf("job role not found") }
	if cur.VersionID != j.VersionID { return errs.Conflictf("stale version") }
	j.VersionID++; cp := *j; m.store[j.ID] = &cp; return nil
}
func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error { delete(m.store, id); return nil }
func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*JobRole, int, error) {
	var r []*JobRole; for _, j := range m.store { r = append(r, j) }; return r, len(r), nil
}

func TestCreate_ValidLimits(t *testing.T) {
	svc := NewService(newMockRepo())
	j := &JobRole{Name: "crane operator", Limits: []Limit{
		{Param: ParamSystolicMax, Max: 140, RemediationMargin: 0.1},
		{Param: ParamGlycemiaMax, Max: 126},
	}}
	if err := svc.Create(context.Background(), j); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.ID == uuid.Nil {
		t.Error("id not assigned")
	}
}

func TestCreate_UnknownParam(t *testing.T) {
	svc := NewService(newMockRepo())
	j := &JobRole{Name: "driver", Limits: []Limit{{Param: "shoe_size_max", Max: 47}}}
	if err := svc.Create(context.Background(), j); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_DuplicateParam(t *testing.T) {
	svc := NewService(newMockRepo())
	j := &JobRole{Name: "driver", Limits: []Limit{
		{Param: ParamSystolicMax, Max: 140},
		{Param: ParamSystolicMax, Max: 150},
	}}
	if err := svc.Create(context.Background(), j); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_BadThresholds(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(context.Background(), &JobRole{Name: "x",
		Limits: []Limit{{Param: ParamBMIMax, Max: 0}}}); !errs.IsValidation(err) {
		t.Error("zero max must be rejected")
	}
	if err := svc.Create(context.Background(), &JobRole{Name: "x",
		Limits: []Limit{{Param: ParamBMIMax, Max: 35, RemediationMargin: -0.1}}}); !errs.IsValidation(err) {
		t.Error("negative margin must be rejected")
	}
	if err := svc.Create(context.Background(), &JobRole{}); !errs.IsValidation(err) {
		t.Error("missing name must be rejected")
	}
}

func TestSnapshot_Detached(t *testing.T) {
	j := &JobRole{ID: uuid.New(), Name: "miner", ExtremeAltitude: true,
		Limits: []Limit{{Param: ParamSystolicMax, Max: 140}}}
	snap := j.Snapshot()
	j.Limits[0].Max = 999
	if snap.Limits[0].Max != 140 {
		t.Error("snapshot shares limit storage with the role")
	}
	if !snap.ExtremeAltitude {
		t.Error("altitude flag lost")
	}
	if l, ok := snap.LimitFor(ParamSystolicMax); !ok || l.Max != 140 {
		t.Error("LimitFor failed")
	}
	if _, ok := snap.LimitFor(ParamGlycemiaMax); ok {
		t.Error("LimitFor returned an undefined limit")
	}
}

func TestLoader_CachesUntilInvalidated(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	j := &JobRole{Name: "pilot", Limits: []Limit{{Param: ParamRiskPctMax, Max: 20}}}
	if err := svc.Create(context.Background(), j); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loader := NewLoader(repo)
	snap, err := loader.Snapshot(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Name != "pilot" {
		t.Errorf("snapshot name = %q", snap.Name)
	}

	// Mutate behind the loader's back; cached snapshot must stay stable.
	stored := repo.store[j.ID]
	stored.Name = "copilot"
	again, _ := loader.Snapshot(context.Background(), j.ID)
	if again.Name != "pilot" {
		t.Error("loader reloaded without invalidation")
	}

	loader.Invalidate(j.ID)
	fresh, _ := loader.Snapshot(context.Background(), j.ID)
	if fresh.Name != "copilot" {
		t.Error("invalidation did not refresh the snapshot")
	}
}

func TestUpdate_StaleVersionConflicts(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	j := &JobRole{Name: "welder"}
	if err := svc.Create(context.Background(), j); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stale := *j
	j.Name = "senior welder"
	if err := svc.Update(context.Background(), j); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	stale.Name = "lead welder"
	if err := svc.Update(context.Background(), &stale); !errs.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
