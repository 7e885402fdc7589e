package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/occfit/occfit/internal/platform/auth"
)

// mockRecorder collects audit entries for assertions.
type mockRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error // if set, RecordAccess returns this error
}

func (m *mockRecorder) RecordAccess(entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return m.err
}

func (m *mockRecorder) last() AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[len(m.entries)-1]
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// newTestContext creates an echo context with optional request mutations.
func newTestContext(method, path string, opts ...func(*http.Request)) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func withAuth(userID string, roles []string) func(*http.Request) {
	return func(req *http.Request) {
		ctx := req.Context()
		ctx = context.WithValue(ctx, auth.UserIDKey, userID)
		ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
		*req = *req.WithContext(ctx)
	}
}

func withActingRole(role string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set(auth.ActingRoleHeader, role)
	}
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestAudit_VisitRead(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	rec := &mockRecorder{}
	visitID := uuid.New().String()

	c, _ := newTestContext(http.MethodGet,
		fmt.Sprintf("/api/v1/visits/%s", visitID),
		withAuth("user-1", []string{"physician"}),
	)
	c.Set("request_id", "req-abc")

	h := Audit(logger, rec)(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.count() != 1 {
		t.Fatalf("expected 1 audit entry, got %d", rec.count())
	}
	entry := rec.last()
	if entry.UserID != "user-1" {
		t.Errorf("expected user_id 'user-1', got %q", entry.UserID)
	}
	if entry.ResourceType != "visits" {
		t.Errorf("expected resource_type 'visits', got %q", entry.ResourceType)
	}
	if entry.VisitID != visitID {
		t.Errorf("expected visit_id %q, got %q", visitID, entry.VisitID)
	}
	if entry.Action != "read" {
		t.Errorf("expected action 'read', got %q", entry.Action)
	}
	if entry.RequestID != "req-abc" {
		t.Errorf("expected request_id 'req-abc', got %q", entry.RequestID)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", entry.StatusCode)
	}
}

func TestAudit_ExamRecordWrite(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	rec := &mockRecorder{}

	c, _ := newTestContext(http.MethodPatch,
		"/api/v1/exam-records/42/raw?visit_id=v-123",
		withAuth("user-2", []string{"clinical", "laboratory"}),
		withActingRole("laboratory"),
	)

	h := Audit(logger, rec)(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := rec.last()
	if entry.ResourceType != "exam-records" {
		t.Errorf("expected resource_type 'exam-records', got %q", entry.ResourceType)
	}
	if entry.Action != "update" {
		t.Errorf("expected action 'update', got %q", entry.Action)
	}
	if entry.VisitID != "v-123" {
		t.Errorf("expected visit_id 'v-123', got %q", entry.VisitID)
	}
	if entry.ActingRole != "laboratory" {
		t.Errorf("expected acting_role 'laboratory', got %q", entry.ActingRole)
	}
	if len(entry.UserRoles) != 2 || entry.UserRoles[0] != "clinical" {
		t.Errorf("unexpected user_roles: %v", entry.UserRoles)
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	rec := &mockRecorder{}

	for _, path := range []string{"/health", "/metrics", "/"} {
		c, _ := newTestContext(http.MethodGet, path)
		h := Audit(logger, rec)(okHandler)
		if err := h(c); err != nil {
			t.Fatalf("unexpected error for %s: %v", path, err)
		}
	}

	if rec.count() != 0 {
		t.Errorf("expected no audit entries for non-API paths, got %d", rec.count())
	}
}

func TestAudit_RecorderError(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	rec := &mockRecorder{err: errors.New("storage down")}

	c, _ := newTestContext(http.MethodGet, "/api/v1/visits",
		withAuth("user-1", []string{"admin"}),
	)

	// A failing recorder must not fail the request.
	h := Audit(logger, rec)(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAudit_NoRecorder(t *testing.T) {
	logger := zerolog.New(os.Stderr)

	c, _ := newTestContext(http.MethodGet, "/api/v1/job-roles")
	h := Audit(logger)(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsAuditablePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/v1/visits", true},
		{"/api/v1/exam-records/123", true},
		{"/api/v1/certifications", true},
		{"/health", false},
		{"/metrics", false},
		{"/api/v1", false},
	}

	for _, tt := range tests {
		if got := isAuditablePath(tt.path); got != tt.want {
			t.Errorf("isAuditablePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestHTTPMethodToAction(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{http.MethodGet, "read"},
		{http.MethodHead, "read"},
		{http.MethodPost, "create"},
		{http.MethodPut, "update"},
		{http.MethodPatch, "update"},
		{http.MethodDelete, "delete"},
		{http.MethodOptions, "read"},
	}

	for _, tt := range tests {
		if got := httpMethodToAction(tt.method); got != tt.want {
			t.Errorf("httpMethodToAction(%q) = %q, want %q", tt.method, got, tt.want)
		}
	}
}

func TestExtractResourceType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/visits", "visits"},
		{"/api/v1/visits/123", "visits"},
		{"/api/v1/exam-records/42/raw", "exam-records"},
		{"/api/v1/job-roles", "job-roles"},
		{"/api/v1/", "unknown"},
	}

	for _, tt := range tests {
		if got := extractResourceType(tt.path); got != tt.want {
			t.Errorf("extractResourceType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestExtractVisitID(t *testing.T) {
	visitUUID := uuid.New().String()
	tests := []struct {
		name string
		path string
		want string
	}{
		{"visit path", fmt.Sprintf("/api/v1/visits/%s", visitUUID), visitUUID},
		{"visit subresource", fmt.Sprintf("/api/v1/visits/%s/completion", visitUUID), visitUUID},
		{"query param", "/api/v1/exam-records?visit_id=v-123", "v-123"},
		{"no visit", "/api/v1/job-roles", ""},
		{"non-uuid segment", "/api/v1/visits/search", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, tt.path)
			if got := extractVisitID(c); got != tt.want {
				t.Errorf("extractVisitID() = %q, want %q", got, tt.want)
			}
		})
	}
}
