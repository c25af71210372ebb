package projects

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a project ID is not in the store
var ErrNotFound = errors.New("project not found")

// Store holds the project list in memory. The backend exposes no
// project API, so the store starts from a fixed demo list and
// fabricates new entries locally.
type Store struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

// NewStore creates a store seeded with the demo project list
func NewStore() *Store {
	s := &Store{
		projects: make(map[string]*Project),
	}
	for _, p := range seedProjects() {
		s.projects[p.ID] = p
	}
	return s
}

// NewEmptyStore creates a store without seed data
func NewEmptyStore() *Store {
	return &Store{
		projects: make(map[string]*Project),
	}
}

func seedProjects() []*Project {
	now := time.Now()
	return []*Project{
		{
			ID:        "todo-app",
			Name:      "Todo App",
			UpdatedAt: now.Add(-48 * time.Hour),
			Branches: []Branch{
				{
					ID:   "todo-app-main",
					Name: "main",
					Steps: []Step{
						{Step: 1, Name: "Project scaffolding"},
						{Step: 2, Name: "Database schema"},
						{Step: 3, Name: "Task CRUD endpoints"},
					},
				},
				{
					ID:   "todo-app-reminders",
					Name: "feature/reminders",
					Steps: []Step{
						{Step: 1, Name: "Reminder scheduler"},
					},
				},
			},
		},
		{
			ID:        "blog-platform",
			Name:      "Blog Platform",
			UpdatedAt: now.Add(-5 * 24 * time.Hour),
			Branches: []Branch{
				{
					ID:   "blog-platform-main",
					Name: "main",
					Steps: []Step{
						{Step: 1, Name: "Project scaffolding"},
						{Step: 2, Name: "Post editor"},
					},
				},
			},
		},
		{
			ID:        "weather-bot",
			Name:      "Weather Bot",
			UpdatedAt: now.Add(-12 * 24 * time.Hour),
			Branches: []Branch{
				{
					ID:   "weather-bot-main",
					Name: "main",
					Steps: []Step{
						{Step: 1, Name: "Project scaffolding"},
					},
				},
			},
		},
	}
}

// List returns copies of all projects, most recently updated first
func (s *Store) List() []*Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Project, 0, len(s.projects))
	for _, p := range s.projects {
		cp := *p
		list = append(list, &cp)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].Name < list[j].Name
		}
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})

	return list
}

// Get returns a copy of a project by ID
func (s *Store) Get(id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	cp := *p
	return &cp, nil
}

// Create fabricates a new project with a single empty main branch
func (s *Store) Create(name string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project := &Project{
		ID:        NewID(),
		Name:      name,
		UpdatedAt: time.Now(),
		Branches: []Branch{
			{ID: NewID(), Name: "main", Steps: []Step{}},
		},
	}
	s.projects[project.ID] = project

	cp := *project
	return &cp, nil
}

// Count returns the number of projects
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}
