package reportgen

import (
	"net/url"

	"github.com/todd-jang/swap-reporting-mvp/pkg/query"
)

// ArtifactFilter narrows artifact listings. Nil fields match everything.
type ArtifactFilter struct {
	Filename *string
	Status   *string
}

// FilterFromQuery parses listing filters from URL query values.
func FilterFromQuery(values url.Values) ArtifactFilter {
	var f ArtifactFilter
	if v := values.Get("filename"); v != "" {
		f.Filename = &v
	}
	if v := values.Get("status"); v != "" {
		f.Status = &v
	}
	return f
}

func artifactProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "report_artifacts", "ra").
		Project("id", "id").
		Project("filename", "filename").
		Project("storage_key", "storage_key").
		Project("entry_count", "entry_count").
		Project("status", "status").
		Project("generated_at", "generated_at").
		Project("updated_at", "updated_at")
}

func artifactBuilder() *query.Builder {
	return query.NewBuilder(
		artifactProjection(),
		query.SortField{Field: "generated_at", Descending: true},
	)
}
