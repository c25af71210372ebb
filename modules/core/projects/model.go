package projects

import (
	"time"

	"github.com/google/uuid"
)

// Step is one development step within a branch. Steps are ordered by
// their 1-based sequence number.
type Step struct {
	Step int    `yaml:"step" json:"step"`
	Name string `yaml:"name" json:"name"`
}

// Branch is one line of development within a project
type Branch struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Project represents one app managed by the backend
type Project struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
	Branches  []Branch  `yaml:"branches" json:"branches"`

	// Git info (computed from a configured workspace, not persisted)
	Workspace string `yaml:"-" json:"workspace,omitempty"`
	GitBranch string `yaml:"-" json:"git_branch,omitempty"`
	GitDirty  bool   `yaml:"-" json:"git_dirty,omitempty"`
}

// NewID generates a unique project or branch ID
func NewID() string {
	return uuid.New().String()
}

// DefaultBranch returns the first branch, or nil if the project has none
func (p *Project) DefaultBranch() *Branch {
	if len(p.Branches) == 0 {
		return nil
	}
	return &p.Branches[0]
}

// TotalSteps counts development steps across all branches
func (p *Project) TotalSteps() int {
	total := 0
	for _, b := range p.Branches {
		total += len(b.Steps)
	}
	return total
}

// ProjectSummary is a lightweight project summary for listing
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Branches  int       `json:"branches"`
	Steps     int       `json:"steps"`
	UpdatedAt time.Time `json:"updated_at"`
	GitBranch string    `json:"git_branch,omitempty"`
	GitDirty  bool      `json:"git_dirty,omitempty"`
}

// ToSummary converts a project to a summary
func (p *Project) ToSummary() *ProjectSummary {
	return &ProjectSummary{
		ID:        p.ID,
		Name:      p.Name,
		Branches:  len(p.Branches),
		Steps:     p.TotalSteps(),
		UpdatedAt: p.UpdatedAt,
		GitBranch: p.GitBranch,
		GitDirty:  p.GitDirty,
	}
}
