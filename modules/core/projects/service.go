package projects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pilotdeck/modules/platform/logger"
)

// Service provides dashboard operations over the mock store
type Service struct {
	store      *Store
	workspaces map[string]string // project ID -> local checkout path
	fetchDelay time.Duration
}

// NewService creates a new project service
func NewService(store *Store, workspaces map[string]string, fetchDelay time.Duration) *Service {
	return &Service{
		store:      store,
		workspaces: workspaces,
		fetchDelay: fetchDelay,
	}
}

// FetchProjects simulates a backend load: it waits the configured
// delay, then returns the project list enriched with git info for
// projects that have a configured workspace.
func (s *Service) FetchProjects(ctx context.Context) ([]*Project, error) {
	if s.fetchDelay > 0 {
		timer := time.NewTimer(s.fetchDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	list := s.store.List()
	for _, p := range list {
		path, ok := s.workspaces[p.ID]
		if !ok {
			continue
		}
		p.Workspace = path

		info, err := InspectWorkspace(path)
		if err != nil {
			logger.Debug("workspace inspect failed for %s: %v", p.ID, err)
			continue
		}
		p.GitBranch = info.Branch
		p.GitDirty = info.Dirty
	}

	return list, nil
}

// CreateProject fabricates a new project locally. No backend call is
// made; the entry exists only for the lifetime of the store.
func (s *Service) CreateProject(name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	return s.store.Create(name)
}

// GetProject returns a project by ID
func (s *Service) GetProject(id string) (*Project, error) {
	return s.store.Get(id)
}

// GetProjectSummaries returns lightweight summaries of all projects
func (s *Service) GetProjectSummaries() []*ProjectSummary {
	projects := s.store.List()
	summaries := make([]*ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = p.ToSummary()
	}
	return summaries
}
