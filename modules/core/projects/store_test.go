package projects

import (
	"errors"
	"testing"
)

func TestStoreSeedsDemoProjects(t *testing.T) {
	store := NewStore()
	if store.Count() != 3 {
		t.Fatalf("expected 3 seed projects, got %d", store.Count())
	}

	p, err := store.Get("todo-app")
	if err != nil {
		t.Fatalf("Get(todo-app) failed: %v", err)
	}
	if p.Name != "Todo App" {
		t.Errorf("expected name 'Todo App', got %q", p.Name)
	}
	if len(p.Branches) != 2 {
		t.Errorf("expected 2 branches, got %d", len(p.Branches))
	}
	if p.TotalSteps() != 4 {
		t.Errorf("expected 4 steps total, got %d", p.TotalSteps())
	}
}

func TestStoreListOrdersByUpdatedAt(t *testing.T) {
	store := NewStore()
	list := store.List()

	if len(list) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].UpdatedAt.After(list[i-1].UpdatedAt) {
			t.Errorf("list not ordered by UpdatedAt desc: %s before %s",
				list[i-1].Name, list[i].Name)
		}
	}
}

func TestStoreCreateFabricatesMainBranch(t *testing.T) {
	store := NewStore()
	before := store.Count()

	p, err := store.Create("Demo")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if p.Name != "Demo" {
		t.Errorf("expected name Demo, got %q", p.Name)
	}
	if p.ID == "" {
		t.Error("expected generated ID")
	}
	if len(p.Branches) != 1 {
		t.Fatalf("expected exactly one branch, got %d", len(p.Branches))
	}
	if p.Branches[0].Name != "main" {
		t.Errorf("expected main branch, got %q", p.Branches[0].Name)
	}
	if len(p.Branches[0].Steps) != 0 {
		t.Errorf("expected zero steps, got %d", len(p.Branches[0].Steps))
	}
	if store.Count() != before+1 {
		t.Errorf("expected count %d, got %d", before+1, store.Count())
	}

	// New project sorts first
	list := store.List()
	if list[0].ID != p.ID {
		t.Errorf("expected new project first in list, got %s", list[0].Name)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore()

	p, err := store.Get("todo-app")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	p.Name = "mutated"

	again, _ := store.Get("todo-app")
	if again.Name != "Todo App" {
		t.Error("mutation of returned project leaked into the store")
	}
}

func TestStoreGetUnknown(t *testing.T) {
	store := NewEmptyStore()
	if _, err := store.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown project, got %v", err)
	}
}
