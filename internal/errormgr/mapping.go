package errormgr

import (
	"net/url"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/query"
)

// EntryFilter narrows entry listings. Nil fields match everything.
type EntryFilter struct {
	Status   *string
	Stage    *string
	TradeID  *string
	Severity *string
}

// FilterFromQuery parses listing filters from URL query values. Stage
// values are canonicalized so legacy source module names still match.
func FilterFromQuery(values url.Values) EntryFilter {
	var f EntryFilter
	if v := values.Get("status"); v != "" {
		f.Status = &v
	}
	if v := values.Get("source_module"); v != "" {
		if stage, err := records.ParseStage(v); err == nil {
			v = stage.String()
		}
		f.Stage = &v
	}
	if v := values.Get("trade_id"); v != "" {
		f.TradeID = &v
	}
	if v := values.Get("severity"); v != "" {
		f.Severity = &v
	}
	return f
}

func entryProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "error_entries", "ee").
		Project("id", "id").
		Project("source_stage", "source_module").
		Project("trade_id", "trade_id").
		Project("messages", "messages").
		Project("payload", "payload").
		Project("raw_payload", "raw_payload").
		Project("severity", "severity").
		Project("status", "status").
		Project("reported_at", "reported_at").
		Project("updated_at", "updated_at")
}

func entryBuilder() *query.Builder {
	return query.NewBuilder(
		entryProjection(),
		query.SortField{Field: "reported_at", Descending: true},
	)
}
