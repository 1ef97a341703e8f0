package services

// State store key paths. All project-scoped state hangs off the project id
// so that removing a project is a handful of subtree deletes.
const (
	keyProjects       = "projects"
	keyCurrentProject = "current-project"
)

func blockIndexKey(projectID string) string {
	return "block-indexes." + projectID
}

func flatIndexKey(projectID string) string {
	return "flat-indexes." + projectID
}

func summariesKey(projectID string) string {
	return "summaries." + projectID
}

func overallSummaryKey(projectID string) string {
	return "summaries." + projectID + ".overall"
}

func keywordsKey(projectID string) string {
	return "keywords." + projectID
}

func relationshipsKey(projectID string) string {
	return "relationships." + projectID
}
