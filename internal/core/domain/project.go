package domain

import "time"

// Project is a user-registered root directory with its own index,
// summaries and current-selection state.
type Project struct {
	// ID is the unique identifier for the project.
	ID string `json:"id"`

	// Path is the absolute root directory of the project.
	Path string `json:"path"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Indexed reports whether a block index has been built.
	Indexed bool `json:"indexed"`

	// HasSummaries reports whether the last index run generated summaries.
	HasSummaries bool `json:"hasSummaries"`

	// LastIndexed is when the last successful index run completed.
	LastIndexed time.Time `json:"lastIndexed,omitzero"`

	// CreatedAt is when the project was registered.
	CreatedAt time.Time `json:"createdAt"`
}

// Relationship is a directed edge in the project's code graph.
// Currently the only kind emitted is "imports".
type Relationship struct {
	// From is the path of the importing file.
	From string `json:"from"`

	// To is the path of the imported file.
	To string `json:"to"`

	// Kind is the edge type.
	Kind string `json:"kind"`
}

// RelationImports is the edge kind recorded for resolved import targets.
const RelationImports = "imports"
