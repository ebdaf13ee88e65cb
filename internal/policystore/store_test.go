package policystore

import (
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Create(&Policy{
		Name:        "cautious",
		Description: "ends every turn",
		Source:      "function decide(state) { return {type: 'END_TURN'}; }",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "cautious" || got.Description != "ends every turn" {
		t.Errorf("unexpected policy: %+v", got)
	}
	if got.Source == "" {
		t.Error("source not persisted")
	}
	if got.ScanCount != 0 || got.LastUsedAt != nil {
		t.Errorf("fresh policy should have no usage, got count=%d used=%v", got.ScanCount, got.LastUsedAt)
	}
}

func TestGetMissingPolicy(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Create(&Policy{Name: "v1", Source: "function decide(s) {}"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = s.Update(&Policy{ID: id, Name: "v2", Description: "revised", Source: "function decide(s) { return {type: 'ABANDON'}; }"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "v2" || got.Description != "revised" {
		t.Errorf("update not applied: %+v", got)
	}

	err = s.Update(&Policy{ID: "missing", Name: "x", Source: "y"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPagination(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := s.Create(&Policy{Name: "p", Source: "function decide(s) {}"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := s.List(1, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", page.TotalCount)
	}
	if len(page.Policies) != 2 {
		t.Errorf("len(Policies) = %d, want 2", len(page.Policies))
	}
	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", page.TotalPages)
	}

	last, err := s.List(3, 2)
	if err != nil {
		t.Fatalf("List page 3: %v", err)
	}
	if len(last.Policies) != 1 {
		t.Errorf("len(page 3) = %d, want 1", len(last.Policies))
	}
}

func TestMarkUsed(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Create(&Policy{Name: "used", Source: "function decide(s) {}"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.MarkUsed(id); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	if err := s.MarkUsed(id); err != nil {
		t.Fatalf("MarkUsed again: %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ScanCount != 2 {
		t.Errorf("ScanCount = %d, want 2", got.ScanCount)
	}
	if got.LastUsedAt == nil {
		t.Error("LastUsedAt not set")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Create(&Policy{Name: "gone", Source: "function decide(s) {}"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
