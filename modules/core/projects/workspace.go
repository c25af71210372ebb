package projects

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// WorkspaceInfo is the git state of a local checkout
type WorkspaceInfo struct {
	Branch    string `json:"branch"`
	Dirty     bool   `json:"dirty"`
	Changed   int    `json:"changed"`   // modified + deleted in worktree
	Untracked int    `json:"untracked"` // untracked files
}

// InspectWorkspace reads branch and worktree state from a local git
// checkout. Repositories without commits report an empty branch.
func InspectWorkspace(path string) (*WorkspaceInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpen(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	info := &WorkspaceInfo{}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		} else {
			// Detached HEAD
			info.Branch = head.Hash().String()[:8]
		}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return info, nil
	}

	status, err := worktree.Status()
	if err != nil {
		return info, nil
	}

	info.Dirty = !status.IsClean()
	for _, fileStatus := range status {
		switch fileStatus.Worktree {
		case git.Untracked:
			info.Untracked++
		case git.Modified, git.Deleted:
			info.Changed++
		}
	}

	return info, nil
}

// IsWorkspace checks if a path is a git repository
func IsWorkspace(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}
