package projects

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initTestRepo creates a git repository with one commit on master
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# demo\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree failed: %v", err)
	}
	if _, err := worktree.Add("README.md"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	_, err = worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	return dir
}

func TestInspectWorkspaceCleanRepo(t *testing.T) {
	dir := initTestRepo(t)

	info, err := InspectWorkspace(dir)
	if err != nil {
		t.Fatalf("InspectWorkspace failed: %v", err)
	}
	if info.Branch != "master" {
		t.Errorf("expected branch master, got %q", info.Branch)
	}
	if info.Dirty {
		t.Error("expected clean worktree")
	}
}

func TestInspectWorkspaceDirtyRepo(t *testing.T) {
	dir := initTestRepo(t)

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	info, err := InspectWorkspace(dir)
	if err != nil {
		t.Fatalf("InspectWorkspace failed: %v", err)
	}
	if !info.Dirty {
		t.Error("expected dirty worktree")
	}
	if info.Untracked != 1 {
		t.Errorf("expected 1 untracked file, got %d", info.Untracked)
	}
}

func TestInspectWorkspaceNotARepo(t *testing.T) {
	if _, err := InspectWorkspace(t.TempDir()); err == nil {
		t.Error("expected error for non-repository path")
	}
	if IsWorkspace(t.TempDir()) {
		t.Error("expected IsWorkspace false for plain directory")
	}
}

func TestFetchProjectsEnrichesWorkspaces(t *testing.T) {
	dir := initTestRepo(t)

	svc := NewService(NewStore(), map[string]string{"todo-app": dir}, 0)
	list, err := svc.FetchProjects(context.Background())
	if err != nil {
		t.Fatalf("FetchProjects failed: %v", err)
	}

	var todo *Project
	for _, p := range list {
		if p.ID == "todo-app" {
			todo = p
		}
	}
	if todo == nil {
		t.Fatal("todo-app missing from list")
	}
	if todo.GitBranch != "master" {
		t.Errorf("expected git branch master, got %q", todo.GitBranch)
	}
	if todo.Workspace != dir {
		t.Errorf("expected workspace %q, got %q", dir, todo.Workspace)
	}
}
