package driving

import (
	"context"

	"github.com/quarry-dev/quarry/internal/core/domain"
)

// ProjectService manages registered projects and the current selection.
type ProjectService interface {
	// Init registers a new project for the given root path.
	// The new project becomes current when none is selected.
	Init(ctx context.Context, path, name string) (*domain.Project, error)

	// List returns all registered projects.
	List(ctx context.Context) ([]domain.Project, error)

	// Get returns a project by id.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// Current returns the currently selected project.
	// Returns domain.ErrNoProject when none is selected.
	Current(ctx context.Context) (*domain.Project, error)

	// Use selects the current project.
	Use(ctx context.Context, id string) error

	// Remove deletes a project along with its index, summaries, keywords
	// and relationships. If it was current, another project is promoted or
	// the current-project pointer is cleared.
	Remove(ctx context.Context, id string) error
}
