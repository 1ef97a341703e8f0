package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/core/ports/driving"
	"github.com/quarry-dev/quarry/internal/logger"
)

// Ensure ProjectManager implements the interface.
var _ driving.ProjectService = (*ProjectManager)(nil)

// ProjectManager maintains the registered projects and the current
// selection in the state store.
type ProjectManager struct {
	store driven.StateStore
}

// NewProjectManager creates a new project manager.
func NewProjectManager(store driven.StateStore) *ProjectManager {
	return &ProjectManager{store: store}
}

// Init registers a new project for the given root path. The path is
// normalised to an absolute path; the display name defaults to the
// directory name. The new project becomes current when none is selected.
func (m *ProjectManager) Init(ctx context.Context, path, name string) (*domain.Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if name == "" {
		name = filepath.Base(abs)
	}

	projects, err := m.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Path == abs {
			return nil, fmt.Errorf("%w: project at %s", domain.ErrAlreadyExists, abs)
		}
	}

	project := domain.Project{
		ID:        uuid.New().String(),
		Path:      abs,
		Name:      name,
		CreatedAt: time.Now(),
	}
	projects = append(projects, project)

	if err := m.store.Set(ctx, keyProjects, projects); err != nil {
		return nil, fmt.Errorf("save projects: %w", err)
	}

	// First project becomes current automatically.
	if _, err := m.Current(ctx); errors.Is(err, domain.ErrNoProject) {
		if err := m.store.Set(ctx, keyCurrentProject, project.ID); err != nil {
			return nil, fmt.Errorf("set current project: %w", err)
		}
	}

	logger.Info("Registered project %s (%s)", project.Name, project.ID)
	return &project, nil
}

// List returns all registered projects.
func (m *ProjectManager) List(ctx context.Context) ([]domain.Project, error) {
	return m.loadProjects(ctx)
}

// Get returns a project by id.
func (m *ProjectManager) Get(ctx context.Context, id string) (*domain.Project, error) {
	projects, err := m.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
}

// Current returns the currently selected project.
func (m *ProjectManager) Current(ctx context.Context) (*domain.Project, error) {
	var id string
	err := driven.GetAs(ctx, m.store, keyCurrentProject, &id)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && id == "") {
		return nil, domain.ErrNoProject
	}
	if err != nil {
		return nil, fmt.Errorf("load current project: %w", err)
	}

	project, err := m.Get(ctx, id)
	if errors.Is(err, domain.ErrProjectNotFound) {
		// Stale pointer - the project was removed out of band.
		return nil, domain.ErrNoProject
	}
	return project, err
}

// Use selects the current project.
func (m *ProjectManager) Use(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	return m.store.Set(ctx, keyCurrentProject, id)
}

// Remove deletes a project along with its persisted index, summaries,
// keywords and relationships. If it was current, another project is
// promoted or the pointer is cleared.
func (m *ProjectManager) Remove(ctx context.Context, id string) error {
	projects, err := m.loadProjects(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range projects {
		if projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
	}

	projects = append(projects[:idx], projects[idx+1:]...)
	if err := m.store.Set(ctx, keyProjects, projects); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}

	for _, key := range []string{
		blockIndexKey(id),
		flatIndexKey(id),
		summariesKey(id),
		keywordsKey(id),
		relationshipsKey(id),
	} {
		if err := m.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}

	var current string
	if err := driven.GetAs(ctx, m.store, keyCurrentProject, &current); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("load current project: %w", err)
	}
	if current == id {
		next := ""
		if len(projects) > 0 {
			next = projects[0].ID
		}
		if err := m.store.Set(ctx, keyCurrentProject, next); err != nil {
			return fmt.Errorf("set current project: %w", err)
		}
	}

	logger.Info("Removed project %s", id)
	return nil
}

// update persists a modified project record.
func (m *ProjectManager) update(ctx context.Context, project *domain.Project) error {
	projects, err := m.loadProjects(ctx)
	if err != nil {
		return err
	}
	for i := range projects {
		if projects[i].ID == project.ID {
			projects[i] = *project
			return m.store.Set(ctx, keyProjects, projects)
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrProjectNotFound, project.ID)
}

// loadProjects reads the project list, treating a missing key as empty.
func (m *ProjectManager) loadProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := driven.GetAs(ctx, m.store, keyProjects, &projects)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	return projects, nil
}
