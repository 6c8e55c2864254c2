package submission

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/pkg/query"
)

// AttemptFilter narrows attempt listings. Nil fields match everything.
type AttemptFilter struct {
	ReportID *uuid.UUID
	Status   *string
}

// FilterFromQuery parses listing filters from URL query values. An
// unparseable report_id is ignored rather than rejected.
func FilterFromQuery(values url.Values) AttemptFilter {
	var f AttemptFilter
	if v := values.Get("report_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.ReportID = &id
		}
	}
	if v := values.Get("status"); v != "" {
		f.Status = &v
	}
	return f
}

func attemptProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "submission_attempts", "sa").
		Project("id", "id").
		Project("report_id", "report_id").
		Project("status", "status").
		Project("sdr_response", "sdr_response").
		Project("error_detail", "error_detail").
		Project("attempted_at", "attempted_at").
		Project("completed_at", "completed_at")
}

func attemptBuilder() *query.Builder {
	return query.NewBuilder(
		attemptProjection(),
		query.SortField{Field: "attempted_at", Descending: true},
	)
}
